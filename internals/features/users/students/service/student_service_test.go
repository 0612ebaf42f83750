package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegefee_backend/internals/databases/testdb"
	"collegefee_backend/internals/features/users/students/model"
	helper "collegefee_backend/internals/helpers"
)

func TestFindByUserID(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	st := testdb.Student(t, db, testdb.StudentOpts{Phone: "+919800000001"})

	got, err := FindByUserID(ctx, db, st.StudentUserID)
	require.NoError(t, err)
	assert.Equal(t, st.StudentID, got.StudentID)
	require.NotNil(t, got.User)
	assert.Equal(t, "+919800000001", *got.User.UserPhone)

	_, err = FindByUserID(ctx, db, uuid.New())
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
	_, err = FindByID(ctx, db, uuid.New())
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestListFiltersCohortAndSkipsDropouts(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	a := testdb.Student(t, db, testdb.StudentOpts{Department: "CSE", AdmissionMode: "KCET"})
	testdb.Student(t, db, testdb.StudentOpts{Department: "CSE", AdmissionMode: "COMEDK", Semester: 3})
	testdb.Student(t, db, testdb.StudentOpts{Department: "ECE", AdmissionMode: "KCET"})
	gone := testdb.Student(t, db, testdb.StudentOpts{Department: "CSE", AdmissionMode: "KCET"})
	require.NoError(t, db.Model(&model.StudentModel{}).
		Where("student_id = ?", gone.StudentID).
		Update("student_status", model.StudentStatusDropout).Error)

	rows, total, err := List(ctx, db, ListFilter{Department: "CSE", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = List(ctx, db, ListFilter{Department: "CSE", AdmissionMode: "KCET", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.StudentID, rows[0].StudentID)

	_, total, err = List(ctx, db, ListFilter{Semester: 3, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	rows, _, err = List(ctx, db, ListFilter{Query: a.StudentUSN, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.StudentID, rows[0].StudentID)

	rows, total, err = List(ctx, db, ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 1)
}
