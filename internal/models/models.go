package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

type User struct {
	ID           string `gorm:"primaryKey"              json:"id"`
	Name         string `gorm:"not null"                json:"name"`
	Email        string `gorm:"uniqueIndex;not null"    json:"email"`
	Username     string `gorm:"uniqueIndex;not null"    json:"username"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`
	Role         Role   `gorm:"not null"                json:"role"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Product struct {
	ID          string  `gorm:"primaryKey"       json:"id"`
	Name        string  `gorm:"not null"         json:"name"`
	Description string  `gorm:"not null"         json:"description"`
	Price       float64 `gorm:"not null"         json:"price"`
	Stock       int     `gorm:"not null"         json:"stock"`
	ImageBase64 *string `gorm:"column:image_base64" json:"image_base64,omitempty"`
	ImageKey    *string `gorm:"column:image_key"    json:"image_key,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Product) HasImage() bool {
	return (p.ImageBase64 != nil && *p.ImageBase64 != "") || (p.ImageKey != nil && *p.ImageKey != "")
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"           json:"-"`
	ProductID string  `gorm:"uniqueIndex;not null"               json:"product_id"`
	Quantity  int     `gorm:"not null;check:quantity > 0"        json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE" json:"product"`
}

func (CartItem) TableName() string {
	return "cart"
}

func (c CartItem) TotalPrice() float64 {
	return c.Product.Price * float64(c.Quantity)
}

const SessionRowID = 1

type Session struct {
	ID     uint   `gorm:"primaryKey;autoIncrement:false;check:session_singleton,id = 1"`
	UserID string `gorm:"not null"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string {
	return "session"
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Session{}}
}
