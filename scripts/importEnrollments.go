package main

import (
	"encoding/csv"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"lms/config"
	"lms/database"
	"lms/models"
	trainingService "lms/services/training"
)

// Bulk-enrolls users into training modules from a CSV export
// (columns: email, module_id).
func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	path := "enrollments.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.TrimSpace(strings.ToLower(h))] = i
	}

	emailIdx, ok := headerIndex["email"]
	if !ok {
		log.Fatal("CSV is missing the email column")
	}
	moduleIdx, ok := headerIndex["module_id"]
	if !ok {
		log.Fatal("CSV is missing the module_id column")
	}

	db := database.Database.Db
	enrolled := 0
	skipped := 0

	for i, row := range records[1:] {
		email := strings.TrimSpace(row[emailIdx])
		moduleID, err := strconv.Atoi(strings.TrimSpace(row[moduleIdx]))
		if err != nil || moduleID <= 0 {
			log.Printf("Row %d: invalid module_id %q, skipping", i+2, row[moduleIdx])
			skipped++
			continue
		}

		var user models.User
		if err := db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error; err != nil {
			log.Printf("Row %d: user %q not found, skipping", i+2, email)
			skipped++
			continue
		}

		if _, err := trainingService.Enroll(db, user.ID, uint(moduleID)); err != nil {
			var duplicate *trainingService.DuplicateEnrollmentError
			if errors.As(err, &duplicate) {
				skipped++
				continue
			}
			log.Printf("Row %d: failed to enroll %q in module %d: %v", i+2, email, moduleID, err)
			skipped++
			continue
		}
		enrolled++
	}

	log.Printf("Import complete: %d enrolled, %d skipped", enrolled, skipped)
}
