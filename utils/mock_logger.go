package utils

import "github.com/stretchr/testify/mock"

// MockLogger records log calls for assertions in tests. Each call is passed to
// mock.Mock as (msg, keysAndValues).
type MockLogger struct {
	mock.Mock
}

var _ Logger = (*MockLogger)(nil)

// NewMockLogger returns a MockLogger that accepts any Debug and Info call, so
// tests only declare the Warn and Error calls they care about.
func NewMockLogger() *MockLogger {
	m := &MockLogger{}
	m.On("Debug", mock.Anything, mock.Anything).Maybe()
	m.On("Info", mock.Anything, mock.Anything).Maybe()
	return m
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) SetLevel(level LogLevel) {
	m.Called(level)
}

// KeyValue returns the value logged under key in keysAndValues, as passed to
// a mock.MatchedBy func.
func KeyValue(keysAndValues []any, key string) (any, bool) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok && k == key {
			return keysAndValues[i+1], true
		}
	}
	return nil, false
}
