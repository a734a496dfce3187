package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storybook-server/internal/models"
	"storybook-server/internal/repository"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, story
func (_m *MockStoryRepository) Create(ctx context.Context, story *models.Story) error {
	ret := _m.Called(ctx, story)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.Story) error); ok {
		r0 = rf(ctx, story)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Story); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Story)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// Save provides a mock function with given fields: ctx, story
func (_m *MockStoryRepository) Save(ctx context.Context, story *models.Story) error {
	ret := _m.Called(ctx, story)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.Story) error); ok {
		r0 = rf(ctx, story)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// ListByAccount provides a mock function with given fields: ctx, accountID
func (_m *MockStoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.StorySummary, error) {
	ret := _m.Called(ctx, accountID)

	var r0 []models.StorySummary
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []models.StorySummary); ok {
		r0 = rf(ctx, accountID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.StorySummary)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, accountID)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// NewMockStoryRepository creates a new instance of MockStoryRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)

// MockProgressRepository is a mock type for the ProgressRepository type
type MockProgressRepository struct {
	mock.Mock
}

// SetCategoryStatus provides a mock function with given fields: ctx, storyID, pageType, status
func (_m *MockProgressRepository) SetCategoryStatus(ctx context.Context, storyID uuid.UUID, pageType models.PageType, status models.CategoryStatus) error {
	ret := _m.Called(ctx, storyID, pageType, status)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, models.PageType, models.CategoryStatus) error); ok {
		r0 = rf(ctx, storyID, pageType, status)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// GetCategoryStatuses provides a mock function with given fields: ctx, storyID
func (_m *MockProgressRepository) GetCategoryStatuses(ctx context.Context, storyID uuid.UUID) (map[models.PageType]models.CategoryStatus, error) {
	ret := _m.Called(ctx, storyID)

	var r0 map[models.PageType]models.CategoryStatus
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) map[models.PageType]models.CategoryStatus); ok {
		r0 = rf(ctx, storyID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(map[models.PageType]models.CategoryStatus)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, storyID)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// ClearStory provides a mock function with given fields: ctx, storyID
func (_m *MockProgressRepository) ClearStory(ctx context.Context, storyID uuid.UUID) error {
	ret := _m.Called(ctx, storyID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) error); ok {
		r0 = rf(ctx, storyID)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// NewMockProgressRepository creates a new instance of MockProgressRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockProgressRepository(t interface {
	mock.TestingT
	Helper()
}) *MockProgressRepository {
	m := &MockProgressRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.ProgressRepository = (*MockProgressRepository)(nil)
