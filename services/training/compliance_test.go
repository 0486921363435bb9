package training

import (
	"testing"
	"time"

	trainingModels "lms/models/training"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateComplianceOverdueFlipsOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Alice", "alice@example.com")
	module := createModule(t, db, "Safety Basics", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)
	setDueDate(t, db, enrollment.ID, time.Now().AddDate(0, 0, -3))

	evaluated, err := EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceNonCompliant, evaluated.ComplianceStatus)
	assert.Equal(t, 1, evaluated.EscalationLevel)
	assert.NotNil(t, evaluated.EscalatedAt)

	audits := auditCount(t, db, enrollment.ID)

	// Second ad-hoc evaluation is a no-op: same status, same level, no audit
	again, err := EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceNonCompliant, again.ComplianceStatus)
	assert.Equal(t, 1, again.EscalationLevel)
	assert.Equal(t, audits, auditCount(t, db, enrollment.ID))
}

func TestEscalateComplianceBumpsAcrossSweeps(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Bob", "bob@example.com")
	module := createModule(t, db, "Fire Drill", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)
	setDueDate(t, db, enrollment.ID, time.Now().AddDate(0, 0, -3))

	first, err := EscalateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EscalationLevel)

	second, err := EscalateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.EscalationLevel)
	assert.Equal(t, trainingModels.ComplianceNonCompliant, second.ComplianceStatus)
}

func TestEvaluateComplianceNoDeadlineIsCompliant(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Carol", "carol@example.com")
	module := createModule(t, db, "First Aid", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)
	require.Nil(t, enrollment.DueDate)

	evaluated, err := EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceCompliant, evaluated.ComplianceStatus)
	assert.Equal(t, 0, evaluated.EscalationLevel)
}

func TestEvaluateComplianceDeadlineBindsUntilEndOfDay(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Dave", "dave@example.com")
	module := createModule(t, db, "Ergonomics", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)

	// Due earlier today: still inside the grace window
	setDueDate(t, db, enrollment.ID, time.Now().Add(-time.Hour))

	evaluated, err := EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceCompliant, evaluated.ComplianceStatus)
}

func TestCertifiedEnrollmentAlwaysCompliant(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Eve", "eve@example.com")
	module := createModule(t, db, "Compliance 101", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)
	_, err = Transition(db, enrollment.ID, trainingModels.StatusInProgress, "", "42")
	require.NoError(t, err)
	finishAttempt(t, db, user.ID, module.ID, trainingModels.ExamTypePostTest, 90, true, time.Now())
	_, err = Transition(db, enrollment.ID, trainingModels.StatusCompleted, "", "42")
	require.NoError(t, err)
	_, err = Transition(db, enrollment.ID, trainingModels.StatusCertified, "", "42")
	require.NoError(t, err)

	// Even with an overdue deadline, certified wins
	setDueDate(t, db, enrollment.ID, time.Now().AddDate(0, 0, -30))

	evaluated, err := EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceCompliant, evaluated.ComplianceStatus)
}

func TestAutoReturnToCompliantRetainsLevel(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Frank", "frank@example.com")
	module := createModule(t, db, "Data Privacy", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)
	setDueDate(t, db, enrollment.ID, time.Now().AddDate(0, 0, -3))

	_, err = EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)

	// Deadline pushed out: status returns, level does not
	setDueDate(t, db, enrollment.ID, time.Now().AddDate(0, 0, 7))

	evaluated, err := EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceCompliant, evaluated.ComplianceStatus)
	assert.Equal(t, 1, evaluated.EscalationLevel)
}

func TestResolveComplianceResetsEscalation(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Grace", "grace@example.com")
	module := createModule(t, db, "Safety Basics", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)
	setDueDate(t, db, enrollment.ID, time.Now().AddDate(0, 0, -10))

	for i := 0; i < 3; i++ {
		_, err = EscalateCompliance(db, enrollment.ID)
		require.NoError(t, err)
	}
	escalated := reloadEnrollment(t, db, enrollment.ID)
	require.Equal(t, 3, escalated.EscalationLevel)

	resolved, err := ResolveCompliance(db, enrollment.ID, "on approved medical leave", "7")
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceCompliant, resolved.ComplianceStatus)
	assert.Equal(t, 0, resolved.EscalationLevel)
	assert.Nil(t, resolved.EscalatedAt)

	trail, err := AuditTrail(db, enrollment.ID)
	require.NoError(t, err)
	last := trail[len(trail)-1]
	assert.Equal(t, trainingModels.AuditActionResolution, last.Action)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "on approved medical leave", *last.Reason)
}

func TestResolveComplianceNoOpWhenClean(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Heidi", "heidi@example.com")
	module := createModule(t, db, "First Aid", 70)

	enrollment, err := Enroll(db, user.ID, module.ID)
	require.NoError(t, err)

	_, err = EvaluateCompliance(db, enrollment.ID)
	require.NoError(t, err)
	before := auditCount(t, db, enrollment.ID)

	resolved, err := ResolveCompliance(db, enrollment.ID, "nothing to resolve", "7")
	require.NoError(t, err)
	assert.Equal(t, trainingModels.ComplianceCompliant, resolved.ComplianceStatus)
	assert.Equal(t, before, auditCount(t, db, enrollment.ID))
}

func TestEvaluateComplianceUnknownEnrollment(t *testing.T) {
	db := setupTestDB(t)

	_, err := EvaluateCompliance(db, 9999)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "enrollment", notFound.Resource)
}
