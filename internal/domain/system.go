package domain

import "time"

// OprLog records administrative mutations for audit, purged by a daily job.
type OprLog struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	OprName   string    `gorm:"size:128" json:"opr_name"`
	OprIp     string    `gorm:"size:64" json:"opr_ip"`
	OptAction string    `gorm:"size:64" json:"opt_action"`
	OptDesc   string    `gorm:"size:256" json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (OprLog) TableName() string {
	return "sys_opr_log"
}

// Countries is the enumerated country list offered at the shipping step.
var Countries = []string{
	"India",
	"United States",
	"United Kingdom",
	"Canada",
	"Australia",
	"Germany",
	"France",
	"Japan",
	"Singapore",
	"United Arab Emirates",
}

// ValidCountry reports whether name is in the enumerated country list.
func ValidCountry(name string) bool {
	for _, c := range Countries {
		if c == name {
			return true
		}
	}
	return false
}
