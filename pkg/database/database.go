package database

import (
	"fmt"
	"log"

	"inr99_academy_backend/internal/config"
	"inr99_academy_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedDefaults(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate for every model. Shared with the sqlite-backed
// test helpers.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.LessonCompletion{},
		&model.Assessment{},
		&model.AssessmentQuestion{},
		&model.AssessmentAttempt{},
		&model.SkillBadge{},
		&model.SubscriptionPlan{},
		&model.Subscription{},
		&model.Payment{},
		&model.Certificate{},
		&model.LiveSession{},
	)
}

func seedDefaults(db *gorm.DB) error {
	// Default subscription plans, inserted once on an empty table
	var count int64
	db.Model(&model.SubscriptionPlan{}).Count(&count)
	if count == 0 {
		defaultPlans := []model.SubscriptionPlan{
			{Code: "monthly-99", Name: "Monthly", PricePaise: 9900, DurationDays: 30, Active: true},
			{Code: "yearly-999", Name: "Yearly", PricePaise: 99900, DurationDays: 365, Active: true},
		}
		for _, p := range defaultPlans {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
