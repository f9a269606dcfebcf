package storage

import (
	"context"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"go.uber.org/zap"
)

var demoDoctors = []models.Doctor{
	{
		Account:         models.Account{Name: "Dr. Anjali Sharma", Phone: "9876500001"},
		Specialization:  "General Physician",
		Qualification:   "MBBS, MD",
		ExperienceYears: 12,
		Hospital:        "District Hospital, Nabha",
		ConsultationFee: 0,
		Available:       true,
	},
	{
		Account:         models.Account{Name: "Dr. Rajesh Kumar", Phone: "9876500002"},
		Specialization:  "Pediatrician",
		Qualification:   "MBBS, DCH",
		ExperienceYears: 8,
		Hospital:        "Civil Hospital, Patiala",
		ConsultationFee: 100,
		Available:       true,
	},
	{
		Account:         models.Account{Name: "Dr. Priya Singh", Phone: "9876500003"},
		Specialization:  "Gynecologist",
		Qualification:   "MBBS, MS",
		ExperienceYears: 10,
		Hospital:        "District Hospital, Nabha",
		ConsultationFee: 150,
		Available:       false,
	},
}

var demoPharmacy = models.Pharmacy{
	Account:   models.Account{Name: "Jan Aushadhi Kendra", Phone: "9876500100"},
	OwnerName: "Harpreet Gill",
	Address:   "Main Bazaar, Nabha",
	LicenseNo: "PB-NBH-2021-0042",
}

var demoMedicines = []models.Medicine{
	{Name: "Paracetamol 500mg", Manufacturer: "Cipla", Price: 20, Stock: 200, Unit: "strip", ExpiryDate: "2027-06-30"},
	{Name: "Amoxicillin 250mg", Manufacturer: "Sun Pharma", Price: 65, Stock: 80, Unit: "strip", ExpiryDate: "2026-12-31"},
	{Name: "ORS Sachet", Manufacturer: "FDC", Price: 18, Stock: 150, Unit: "sachet", ExpiryDate: "2027-03-31"},
	{Name: "Cetirizine 10mg", Manufacturer: "Dr. Reddy's", Price: 15, Stock: 120, Unit: "strip", ExpiryDate: "2027-01-31"},
	{Name: "Iron Folic Acid", Manufacturer: "Mankind", Price: 12, Stock: 300, Unit: "strip", ExpiryDate: "2027-09-30"},
}

// Seed fills an empty store with demo doctors, one pharmacy and its stock.
// It does nothing when any doctor exists. Every seeded account gets passwordHash.
func (s *Service) Seed(ctx context.Context, passwordHash string) (bool, error) {
	doctors, err := load[models.Doctor](ctx, s.store, kv.Doctors)
	if err != nil {
		return false, err
	}
	if len(doctors) > 0 {
		return false, nil
	}

	for _, d := range demoDoctors {
		d.PasswordHash = passwordHash
		if err := s.CreateDoctor(ctx, &d); err != nil {
			return false, err
		}
	}

	pharmacy := demoPharmacy
	pharmacy.PasswordHash = passwordHash
	if err := s.CreatePharmacy(ctx, &pharmacy); err != nil {
		return false, err
	}
	for _, m := range demoMedicines {
		if err := s.AddMedicine(ctx, pharmacy.ID.Hex(), &m); err != nil {
			return false, err
		}
	}

	s.logger.Info("demo data seeded",
		zap.Int("doctors", len(demoDoctors)),
		zap.Int("medicines", len(demoMedicines)),
	)
	return true, nil
}
