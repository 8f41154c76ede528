package service

import (
	"sunbird/internal/external"
	"sunbird/internal/messaging"
	"sunbird/internal/repository"
	"sunbird/internal/search"
)

type Services struct {
	Activities *ActivityService
	Bookings   *BookingService
}

func NewServices(repos *repository.Repositories, es *search.ElasticsearchClient, paymentClient *external.PaymentClient, natsClient *messaging.NATSClient) *Services {
	activityService := NewActivityService(repos.Activities, repos.Occurrences, repos.Operators, es)
	bookingService := NewBookingService(repos.Bookings, repos.Occurrences, repos.Operators, repos.Tourists, paymentClient, natsClient)

	return &Services{
		Activities: activityService,
		Bookings:   bookingService,
	}
}
