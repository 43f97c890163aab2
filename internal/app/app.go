package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	evbus "github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"

	"github.com/openmallhq/openmall/config"
	"github.com/openmallhq/openmall/internal/cart"
	"github.com/openmallhq/openmall/internal/checkout"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/order"
	"github.com/openmallhq/openmall/internal/payment"
	"github.com/openmallhq/openmall/pkg/metrics"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	cartStore *cart.Store
	carts     *cart.Service
	orders    *order.Service
	flow      *checkout.Flow
	gateway   payment.Gateway
	bus       evbus.Bus
	sched     *cron.Cron
	mailer    *Mailer
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig { return a.appConfig }
func (a *Application) DB() *gorm.DB              { return a.gormDB }
func (a *Application) Carts() *cart.Service      { return a.carts }
func (a *Application) Orders() *order.Service    { return a.orders }
func (a *Application) Flow() *checkout.Flow      { return a.flow }
func (a *Application) Bus() evbus.Bus            { return a.bus }
func (a *Application) Scheduler() *cron.Cron     { return a.sched }

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	cfg.InitDirs()
	a.initLogger(cfg)

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.checkSuper()
	a.checkProducts()

	store, err := cart.NewStore(filepath.Join(cfg.System.Workdir, "data", "cart.db"))
	if err != nil {
		zap.S().Fatalf("cart store init failed: %v", err)
	}
	a.cartStore = store
	a.carts = cart.NewService(store)

	a.bus = evbus.New()
	a.orders = order.NewService(order.NewGormRepository(a.gormDB), a.bus)
	a.gateway = a.selectGateway(cfg)
	a.flow = checkout.NewFlow(a.carts, a.orders, a.gateway)

	a.mailer = NewMailer(cfg.Smtp, a.gormDB)
	a.mailer.Subscribe(a.bus)

	a.initJob()
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) selectGateway(cfg *config.AppConfig) payment.Gateway {
	switch cfg.Payment.Provider {
	case "paypal":
		return payment.NewPayPalGateway(cfg.Payment.PaypalApiUrl, cfg.Payment.PaypalToken)
	default:
		zap.L().Info("using sandbox payment gateway")
		return payment.SandboxGateway{}
	}
}

func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	logLevel := gormlogger.Warn
	if cfg.Debug {
		logLevel = gormlogger.Info
	}
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	switch cfg.Type {
	case "sqlite":
		path := filepath.Join(workdir, "data", cfg.Name+".db")
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			zap.S().Fatalf("sqlite connect error: %v", err)
		}
		return db
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			zap.S().Fatalf("postgres connect error: %v", err)
		}
		return db
	}
}

func (a *Application) MigrateDB() error {
	return a.gormDB.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
	a.checkSuper()
	a.checkProducts()
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.cartStore != nil {
		_ = a.cartStore.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
