package database

import (
	"fmt"
	"time"

	"techlympics/config"
	"techlympics/logger"
	"techlympics/models"
	"techlympics/utils"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

var DefaultAdminUsername = "admin"
var DefaultAdminEmail = "admin@techlympics.my"
var DefaultPassword = "admin123"

// Dialector returns the gorm dialector matching the configured DB_DRIVER
func Dialector() (gorm.Dialector, error) {
	switch config.DBDriver {
	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable TimeZone=Asia/Kuala_Lumpur",
			config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(config.MySQLDSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.DBDriver)
	}
}

// InitDB opens the database connection, tunes the pool, migrates the models and populates defaults
func InitDB() {
	dialector, err := Dialector()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to select database driver")
	}

	DB, err = Open(dialector)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect database")
	}

	if err := Migrate(DB); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate database")
	}

	Populate(DB)
}

// Open connects with the given dialector and applies the connection pool settings
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if config.IsProduction() {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := RegisterMetricsCallbacks(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table of the API
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Zone{},
		&models.State{},
		&models.School{},
		&models.HigherInstitution{},
		&models.TargetGroup{},
		&models.Announcement{},
		&models.Contingent{},
		&models.ContingentManager{},
		&models.ContingentRequest{},
		&models.Contestant{},
		&models.Contest{},
		&models.Team{},
		&models.TeamMember{},
		&models.Event{},
		&models.EventContest{},
		&models.EventContestTeam{},
		&models.AttendanceEndpoint{},
		&models.AttendanceManager{},
		&models.AttendanceContestant{},
		&models.AttendanceTeam{},
		&models.CertTemplate{},
		&models.Certificate{},
		&models.CertificateSerial{},
		&models.JudgingTemplate{},
		&models.JudgingTemplateCriterion{},
		&models.JudgeEndpoint{},
		&models.JudgingSession{},
		&models.JudgingSessionScore{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.QuizAnswer{},
		&models.EmailTemplate{},
		&models.EmailCampaign{},
		&models.EmailRecipient{},
		&models.EmailOutgoing{},
	)
}

// DefaultTargetGroups are seeded on an empty database
var DefaultTargetGroups = []models.TargetGroup{
	{Code: "SR-K1", Name: "Sekolah Rendah Kategori 1", SchoolLevel: "sekolah rendah", MinAge: 7, MaxAge: 9},
	{Code: "SR-K2", Name: "Sekolah Rendah Kategori 2", SchoolLevel: "sekolah rendah", MinAge: 10, MaxAge: 12},
	{Code: "SM-K1", Name: "Sekolah Menengah Kategori 1", SchoolLevel: "sekolah menengah", MinAge: 13, MaxAge: 15},
	{Code: "SM-K2", Name: "Sekolah Menengah Kategori 2", SchoolLevel: "sekolah menengah", MinAge: 16, MaxAge: 17},
	{Code: "BELIA", Name: "Belia", SchoolLevel: "belia", MinAge: 18, MaxAge: 30},
}

// Populate populates the database with default values if needed
func Populate(db *gorm.DB) {
	var countUser int64
	db.Model(&models.User{}).Count(&countUser)
	if countUser == 0 {
		// Default password either from the .env file or the DefaultPassword variable
		password := DefaultPassword
		if config.DefaultPassword != "" {
			password = config.DefaultPassword
		}

		hashed, err := utils.HashPassword(password)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to hash default admin password")
		}

		username := DefaultAdminUsername
		admin := models.User{
			Name:     "Administrator",
			Username: &username,
			Email:    DefaultAdminEmail,
			Password: hashed,
			Role:     models.RoleAdmin,
			IsActive: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			logger.Log.WithError(err).Error("failed to create default admin")
		} else {
			logger.Log.Info("Default user admin created")
		}
	}

	var countGroups int64
	db.Model(&models.TargetGroup{}).Count(&countGroups)
	if countGroups == 0 {
		groups := make([]models.TargetGroup, len(DefaultTargetGroups))
		copy(groups, DefaultTargetGroups)
		if err := db.Create(&groups).Error; err != nil {
			logger.Log.WithError(err).Error("failed to create default target groups")
		} else {
			logger.Log.WithField("count", len(groups)).Info("Default target groups created")
		}
	}
}
