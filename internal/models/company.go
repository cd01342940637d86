package models

import "time"

type CompanyProfile struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Version int64  `gorm:"column:version;not null" json:"-"`

	OwnerUsername string `gorm:"column:owner_username;type:varchar(150);not null;uniqueIndex" json:"owner_username"`
	CompanyName   string `gorm:"column:company_name;type:varchar(255);not null" json:"company_name"`
	Website       string `gorm:"column:website;type:varchar(255)" json:"website,omitempty"`
	Industry      string `gorm:"column:industry;type:varchar(255)" json:"industry,omitempty"`
	Location      string `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`

	ContactName  string `gorm:"column:contact_name;type:varchar(255)" json:"contact_name,omitempty"`
	ContactEmail string `gorm:"column:contact_email;type:varchar(255)" json:"contact_email,omitempty"`
	ContactPhone string `gorm:"column:contact_phone;type:varchar(50)" json:"contact_phone,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null" json:"updated_at"`
}

func (CompanyProfile) TableName() string { return "company_profile" }
