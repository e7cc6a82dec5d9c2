package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryMedicines   ProductCategory = "medicines"
	CategorySupplements ProductCategory = "supplements"
	CategoryPersonal    ProductCategory = "personal-care"
	CategoryMedical     ProductCategory = "medical-supplies"
	CategoryBabyCare    ProductCategory = "baby-care"
)

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Slug          string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	OriginalPrice float64         `json:"original_price"`
	Discount      int             `json:"discount"` // percent off OriginalPrice
	Category      ProductCategory `gorm:"type:varchar(50);index" json:"category"`
	BodySystem    string          `gorm:"type:varchar(50);index" json:"body_system"` // respiratory, digestive, ...
	Conditions    pq.StringArray  `gorm:"type:text[]" json:"conditions"`             // medical conditions treated (e.g. ["flu", "fever"])
	InStock       bool            `gorm:"default:true" json:"in_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Variations []ProductVariation `gorm:"foreignKey:ProductID" json:"variations,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariation is a purchasable presentation of a product, e.g.
// "20 tablets" vs "syrup 120ml", with its own price adjustment.
type ProductVariation struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	Label      string         `gorm:"not null" json:"label"`
	PriceDelta float64        `json:"price_delta"`
	InStock    bool           `gorm:"default:true" json:"in_stock"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProductVariation) TableName() string {
	return "product_variations"
}
