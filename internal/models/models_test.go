package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeeProgress(t *testing.T) {
	assert.Equal(t, 0.0, Fee{Amount: 100}.Progress())
	assert.Equal(t, 33.33, Fee{Amount: 300, PaidAmount: 100}.Progress())
	assert.Equal(t, 100.0, Fee{Amount: 100, PaidAmount: 150}.Progress())
	assert.Equal(t, 100.0, Fee{Status: FeeStatusPaid}.Progress())
	assert.Equal(t, 0.0, Fee{Amount: 100, PaidAmount: 150}.Outstanding())
	assert.Equal(t, 60.0, Fee{Amount: 100, PaidAmount: 40}.Outstanding())
	assert.True(t, Fee{Amount: 100, PaidAmount: 100, Status: FeeStatusPartial}.Settled())
}

func TestNoticeVisibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Notice{IsActive: true, PublishDate: past}.Visible(now))
	assert.False(t, Notice{IsActive: false, PublishDate: past}.Visible(now))
	assert.False(t, Notice{IsActive: true, PublishDate: future}.Visible(now))
	assert.False(t, Notice{IsActive: true, PublishDate: past, ExpiryDate: &past}.Visible(now))
	assert.True(t, Notice{IsActive: true, ExpiryDate: &future}.Visible(now))
}

func TestNoticeAddresses(t *testing.T) {
	assert.True(t, Notice{TargetAudience: AudienceAll}.Addresses(RoleParent))
	assert.True(t, Notice{TargetAudience: AudienceTeachers}.Addresses(RoleTeacher))
	assert.False(t, Notice{TargetAudience: AudienceTeachers}.Addresses(RoleStudent))
}

func TestRoleGrantsAndValidity(t *testing.T) {
	role := Role{Permissions: []string{"fees.read", "fees.write"}}
	assert.True(t, role.Grants("fees.write"))
	assert.False(t, role.Grants("users.write"))
	assert.True(t, RoleParent.Valid())
	assert.False(t, UserRole("janitor").Valid())
}

func TestSubmissionGraded(t *testing.T) {
	grade := 8.5
	assert.False(t, Submission{Status: SubmissionStatusSubmitted}.Graded())
	assert.True(t, Submission{Grade: &grade}.Graded())
}
