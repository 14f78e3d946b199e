package models

// All lists every table, in the order AutoMigrate should create them.
func All() []any {
	return []any{
		&User{},
		&GuestUser{},
		&Category{},
		&MenuItem{},
		&Cart{},
		&CartItem{},
		&DeliveryZone{},
		&Table{},
		&Order{},
		&OrderItem{},
		&Reservation{},
		&OperatingHours{},
		&Staff{},
		&Attendance{},
		&Supplier{},
		&Ingredient{},
		&Purchase{},
	}
}
