// internal/mocks/mocks.go
package mocks

import (
	"context"
	"io"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

// MockUploadRepository mocks the UploadRepository interface
type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Save(ctx context.Context, upload *entity.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *MockUploadRepository) FindByCategory(ctx context.Context, category string) ([]*entity.Upload, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Upload), args.Error(1)
}

func (m *MockUploadRepository) List(ctx context.Context) ([]*entity.Upload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Upload), args.Error(1)
}

// MockFileStore mocks the FileStore interface
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Write(ctx context.Context, name string, content io.Reader) (int64, error) {
	args := m.Called(ctx, name, content)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileStore) Path(name string) string {
	args := m.Called(name)
	return args.String(0)
}

func (m *MockFileStore) Stat(name string) (repository.FileInfo, bool, error) {
	args := m.Called(name)
	return args.Get(0).(repository.FileInfo), args.Bool(1), args.Error(2)
}

func (m *MockFileStore) ListPrefix(prefix string) ([]repository.FileInfo, error) {
	args := m.Called(prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.FileInfo), args.Error(1)
}

// MockDatasetRepository mocks the DatasetRepository interface
type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Load(ctx context.Context, category string) (*entity.Dataset, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Dataset), args.Error(1)
}

// MockForecaster mocks the Forecaster interface
type MockForecaster struct {
	mock.Mock
	ModelName string
}

func (m *MockForecaster) Name() string {
	return m.ModelName
}

func (m *MockForecaster) Forecast(ctx context.Context, series entity.Series, horizon int) (*entity.ModelForecast, error) {
	args := m.Called(ctx, series, horizon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ModelForecast), args.Error(1)
}
