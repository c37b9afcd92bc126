package integration_test

const (
	TestShowingId      = 1
	TestOtherShowingId = 2
	TestTicketPrice    = "12.50"

	TestCardNumber     = "4111111111111111"
	TestCardExpiration = "12/25"
	TestCardholderName = "John Doe"
	TestCardCVC        = "123"
)
