package models

import "time"

// CreateActivityRequest - модель для создания активности
type CreateActivityRequest struct {
	OperatorID  int64   `json:"operator_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	Location    string  `json:"location" binding:"required"`
}

// CreateActivityResponse - модель ответа при создании активности
type CreateActivityResponse struct {
	ID int64 `json:"id"`
}

// CreateOccurrenceRequest - модель для создания даты проведения
type CreateOccurrenceRequest struct {
	ActivityID      int64     `json:"activity_id" binding:"required"`
	OperatorID      *int64    `json:"operator_id,omitempty"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	BookingDeadline time.Time `json:"booking_deadline" binding:"required"`
	AvailableSpots  int       `json:"available_spots" binding:"required"`
	PricePerAdult   int64     `json:"price_per_adult" binding:"required"`
	PricePerChild   int64     `json:"price_per_child"`
}

// CreateOccurrenceResponse - модель ответа при создании даты проведения
type CreateOccurrenceResponse struct {
	ID int64 `json:"id"`
}

// ListOccurrencesResponseItem - элемент списка дат проведения
type ListOccurrencesResponseItem struct {
	ID             int64     `json:"id"`
	ActivityID     int64     `json:"activity_id"`
	StartsAt       time.Time `json:"starts_at"`
	AvailableSpots int       `json:"available_spots"`
	PricePerAdult  int64     `json:"price_per_adult"`
	PricePerChild  int64     `json:"price_per_child"`
}

// CreateBookingRequest - форма заявки на бронирование от туриста
type CreateBookingRequest struct {
	OccurrenceID int64  `json:"occurrence_id" binding:"required"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	EmailConfirm string `json:"email_confirm"`
	Phone        string `json:"phone,omitempty"`
	AdultCount   int    `json:"adult_count"`
	ChildCount   int    `json:"child_count"`
	CardToken    string `json:"card_token"`
}

// CreateBookingResponse - модель ответа при создании бронирования
type CreateBookingResponse struct {
	ID             int64  `json:"id"`
	Reference      string `json:"reference"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
	TotalAmount    int64  `json:"total_amount"`
	OperatorAmount int64  `json:"operator_amount"`
	PlatformFee    int64  `json:"platform_fee"`
}

// BookingActions - доступные пользователю действия для текущего состояния
type BookingActions struct {
	CanContactOperator bool   `json:"can_contact_operator"`
	CanRebook          bool   `json:"can_rebook"`
	ShowPaymentInfo    bool   `json:"show_payment_info"`
	ShowRefundInfo     bool   `json:"show_refund_info"`
	Label              string `json:"label"`
	Progress           int    `json:"progress"`
}

// BookingDetailResponse - бронирование вместе с блоком действий
type BookingDetailResponse struct {
	Booking Booking        `json:"booking"`
	Actions BookingActions `json:"actions"`
}

// ListBookingsResponseItem - элемент списка бронирований
type ListBookingsResponseItem struct {
	ID            int64  `json:"id"`
	Reference     string `json:"reference"`
	OccurrenceID  int64  `json:"occurrence_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	TotalAmount   int64  `json:"total_amount"`
}

// BookingActionRequest - запрос перехода по ссылке на бронирование
type BookingActionRequest struct {
	Reference string `json:"reference" binding:"required"`
	Reason    string `json:"reason,omitempty"`
}

// PaymentNotificationPayload - модель для webhook уведомлений от платежного шлюза
type PaymentNotificationPayload struct {
	PaymentRef string                 `json:"paymentRef"`
	OrderRef   string                 `json:"orderRef"`
	Status     string                 `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	Data       map[string]interface{} `json:"data"`
}

// ValidationErrorResponse - список всех нарушенных полей формы
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
