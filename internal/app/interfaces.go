package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/config"
	"github.com/openmallhq/openmall/internal/cart"
	"github.com/openmallhq/openmall/internal/checkout"
	"github.com/openmallhq/openmall/internal/order"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// WebContext is what the HTTP handler packages need from the application.
type WebContext interface {
	DBProvider
	ConfigProvider

	Carts() *cart.Service
	Orders() *order.Service
	Flow() *checkout.Flow
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ WebContext        = (*Application)(nil)
)
