package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/carebook/clinic-api/config"
	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository/postgres"
	"github.com/carebook/clinic-api/pkg/logger"
	"github.com/carebook/clinic-api/pkg/security"
)

var specializationNames = []string{
	"Cardiology",
	"Dermatology",
	"General Medicine",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
}

// Seeds the database with an administrator account, the specialization
// catalog and optional demo clinicians and patients.
func main() {
	var (
		adminEmail     = flag.String("admin-email", "admin@clinic.local", "administrator email")
		adminPassword  = flag.String("admin-password", "changeme123", "administrator password")
		demoClinicians = flag.Int("clinicians", 5, "number of demo clinicians")
		demoPatients   = flag.Int("patients", 20, "number of demo patients")
	)
	flag.Parse()

	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	hasher := security.NewBcryptHasher(12)

	userRepo := postgres.NewUserRepository(db)
	specializationRepo := postgres.NewSpecializationRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)

	// Administrator account.
	hash, err := hasher.Hash(*adminPassword)
	if err != nil {
		log.Fatal(err, "failed to hash admin password")
	}
	admin := &model.User{
		Email:        *adminEmail,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warn("admin account not created (may already exist)", "error", err.Error())
	} else {
		log.Info("created administrator", "email", admin.Email)
	}

	// Specialization catalog.
	specializationIDs := make([]uuid.UUID, 0, len(specializationNames))
	for _, name := range specializationNames {
		spec := &model.Specialization{Name: name}
		if err := specializationRepo.Create(ctx, spec); err != nil {
			existing, getErr := specializationRepo.GetByName(ctx, name)
			if getErr != nil {
				log.Fatal(err, "failed to seed specialization", "name", name)
			}
			spec = existing
		}
		specializationIDs = append(specializationIDs, spec.ID)
	}
	log.Info("seeded specializations", "count", len(specializationIDs))

	gofakeit.Seed(0)

	// Demo clinicians with a week of availability.
	for i := 0; i < *demoClinicians; i++ {
		name := "Dr. " + gofakeit.Name()
		passwordHash, err := hasher.Hash(gofakeit.Password(true, true, true, false, false, 12))
		if err != nil {
			log.Fatal(err, "failed to hash clinician password")
		}
		user := &model.User{
			Email:        gofakeit.Email(),
			Name:         name,
			PasswordHash: passwordHash,
			Role:         model.RoleClinician,
			ContactInfo:  gofakeit.Phone(),
			Active:       true,
		}
		clinician := &model.Clinician{
			SpecializationID: specializationIDs[i%len(specializationIDs)],
			Name:             user.Name,
			Email:            user.Email,
			ContactInfo:      user.ContactInfo,
			Active:           true,
		}
		if err := clinicianRepo.CreateWithUser(ctx, user, clinician); err != nil {
			log.Fatal(err, "failed to seed clinician")
		}

		for day := 0; day < 7; day++ {
			date := time.Now().AddDate(0, 0, day).Format(model.DateFormat)
			window := &model.AvailabilityWindow{
				ClinicianID: clinician.ID,
				Date:        date,
				StartTime:   "09:00",
				EndTime:     "17:00",
			}
			if err := availabilityRepo.Upsert(ctx, window); err != nil {
				log.Fatal(err, "failed to seed availability")
			}
		}
	}
	log.Info("seeded clinicians", "count", *demoClinicians)

	// Demo patients.
	for i := 0; i < *demoPatients; i++ {
		passwordHash, err := hasher.Hash(gofakeit.Password(true, true, true, false, false, 12))
		if err != nil {
			log.Fatal(err, "failed to hash patient password")
		}
		dob := gofakeit.DateRange(
			time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
		).Format(model.DateFormat)

		user := &model.User{
			Email:        gofakeit.Email(),
			Name:         gofakeit.Name(),
			PasswordHash: passwordHash,
			Role:         model.RolePatient,
			ContactInfo:  gofakeit.Phone(),
			Active:       true,
		}
		patient := &model.Patient{
			Name:        user.Name,
			Email:       user.Email,
			DateOfBirth: dob,
			ContactInfo: user.ContactInfo,
			Active:      true,
		}
		if err := patientRepo.CreateWithUser(ctx, user, patient); err != nil {
			log.Fatal(err, "failed to seed patient")
		}
	}
	log.Info("seeded patients", "count", *demoPatients)

	fmt.Println("seed complete")
}
