package models

import "time"

// Role values for User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidSizes enumerates the jersey sizes a cart entry may carry.
var ValidSizes = map[string]bool{"S": true, "M": true, "L": true, "XL": true, "XXL": true}

// User represents a customer of the store and owns the embedded
// favourites and cart collections.
type User struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email      string          `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string          `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Role       string          `json:"role" gorm:"type:varchar(16);default:user" validate:"omitempty,oneof=user admin"`
	ImageURL   string          `json:"imageUrl,omitempty" gorm:"type:varchar(512)"`
	Favourites []FavouriteItem `json:"favourites" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Cart       []CartItem      `json:"cart" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Sanitized returns a copy of the user safe to put in a response payload.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// FavouriteItem marks a product as a favourite of one user.
// A user never holds two entries for the same product.
type FavouriteItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"-" gorm:"index:idx_fav_user_product,unique;type:varchar(36)"`
	ProductID string    `json:"product" gorm:"index:idx_fav_user_product,unique;type:varchar(36)" validate:"required"`
	AddedAt   time.Time `json:"addedAt"`
}

// CartItem is one line of a user's cart, unique per (user, product, size).
// Quantity is always at least 1: removal, not a zero quantity, is how an
// item leaves the cart.
type CartItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"-" gorm:"index:idx_cart_user_product_size,unique;type:varchar(36)"`
	ProductID string    `json:"product" gorm:"index:idx_cart_user_product_size,unique;type:varchar(36)" validate:"required"`
	Size      string    `json:"size" gorm:"index:idx_cart_user_product_size,unique;type:varchar(8)" validate:"required,oneof=S M L XL XXL"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	AddedAt   time.Time `json:"addedAt"`
}
