package models

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"       json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"index"                    json:"email,omitempty"`
	FirstName    string    `                                json:"first_name,omitempty"`
	LastName     string    `                                json:"last_name,omitempty"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         auth.Role `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `                                json:"created_at"`
	UpdatedAt    time.Time `                                json:"updated_at"`
}

func (u User) GetID() string { return u.ID }

func (u User) Subject() auth.Subject {
	return auth.Subject{ID: u.ID, Username: u.Username, Role: u.Role}
}

type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"not null"           json:"title"`
	Description string    `                          json:"description"`
	Completed   bool      `gorm:"not null"           json:"completed"`
	CreatedAt   time.Time `                          json:"created_at"`
	UpdatedAt   time.Time `                          json:"updated_at"`
}

func (t Task) GetID() string { return t.ID }

type Category struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"not null"           json:"name"`
	Slug        string `gorm:"uniqueIndex"        json:"slug"`
	Description string `                          json:"description"`
}

func (c Category) GetID() string { return c.ID }

type Product struct {
	ID          string    `gorm:"primaryKey;size:36"          json:"id"`
	Name        string    `gorm:"not null"                    json:"name"`
	Description string    `gorm:"not null"                    json:"description"`
	Price       float64   `gorm:"not null"                    json:"price"`
	CategoryID  string    `gorm:"index"                       json:"category_id"`
	Stock       int       `gorm:"not null;check:stock >= 0"   json:"stock"`
	Images      []string  `gorm:"serializer:json"             json:"images"`
	Features    []string  `gorm:"serializer:json"             json:"features"`
	CreatedAt   time.Time `                                   json:"created_at"`
	UpdatedAt   time.Time `                                   json:"updated_at"`
}

func (p Product) GetID() string { return p.ID }

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Active orders still hold stock.
func (s OrderStatus) Active() bool {
	return s == OrderPending || s == OrderConfirmed || s == OrderShipped
}

type Address struct {
	Street  string `json:"street"   validate:"required"`
	City    string `json:"city"     validate:"required"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	UserID          string      `gorm:"index;not null"     json:"user_id"`
	Items           []OrderItem `gorm:"serializer:json"    json:"items"`
	TotalAmount     float64     `gorm:"not null"           json:"total_amount"`
	Status          OrderStatus `gorm:"index;not null"     json:"status"`
	ShippingAddress Address     `gorm:"serializer:json"    json:"shipping_address"`
	TrackingNumber  string      `                          json:"tracking_number,omitempty"`
	CreatedAt       time.Time   `                          json:"created_at"`
	UpdatedAt       time.Time   `                          json:"updated_at"`
}

func (o Order) GetID() string { return o.ID }

type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"not null"           json:"title"`
	Content     string    `                          json:"content"`
	Category    string    `gorm:"index"              json:"category"`
	Author      string    `                          json:"author"`
	Tags        []string  `gorm:"serializer:json"    json:"tags"`
	PublishedAt time.Time `gorm:"index"              json:"published_at"`
}

func (p Post) GetID() string { return p.ID }

type PostCategory struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}
