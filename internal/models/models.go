package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Address{},
		&User{},
		&UserProfile{},
		&Business{},
		&Vehicle{},
		&Role{},
		&UserRole{},
		&VirtualAccount{},
	}
}
