package model

// All はマイグレーション対象のモデル一覧。
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Wishlist{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusEvent{},
		&Review{},
		&AuditLog{},
	}
}
