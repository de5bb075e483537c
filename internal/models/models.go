package models

// Referenced lists the tables the main application owns. The service only
// reads them to resolve foreign keys.
func Referenced() []any {
	return []any{
		&InspectionOrder{},
		&Appointment{},
		&InspectionOrderStatus{},
		&InspectionOrderStatusInternal{},
		&AppointmentStatus{},
		&Role{},
		&User{},
	}
}

// Owned lists the tables this service writes.
func Owned() []any {
	return []any{
		&StateChange{},
		&APIToken{},
		&WebhookLog{},
	}
}

// All lists every table owned or referenced by the service, in migration order.
func All() []any {
	return append(Referenced(), Owned()...)
}
