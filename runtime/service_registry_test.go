package runtime

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	status  error
	stopErr error
	events  *[]string
}

type secondMockService struct {
	status error
	events *[]string
}

func (m *mockService) Start() {
	if m.events != nil {
		*m.events = append(*m.events, "start first")
	}
}

func (m *mockService) Stop() error {
	if m.events != nil {
		*m.events = append(*m.events, "stop first")
	}
	return m.stopErr
}

func (m *mockService) Status() error {
	return m.status
}

func (s *secondMockService) Start() {
	if s.events != nil {
		*s.events = append(*s.events, "start second")
	}
}

func (s *secondMockService) Stop() error {
	if s.events != nil {
		*s.events = append(*s.events, "stop second")
	}
	return nil
}

func (s *secondMockService) Status() error {
	return s.status
}

func TestRegisterService_Twice(t *testing.T) {
	registry := NewServiceRegistry()
	m := &mockService{}
	require.NoError(t, registry.RegisterService(m))
	require.Equal(t, 1, len(registry.serviceTypes))
	assert.ErrorIs(t, registry.RegisterService(m), errServiceExists)
}

func TestRegisterService_Different(t *testing.T) {
	registry := NewServiceRegistry()
	m := &mockService{}
	s := &secondMockService{}
	require.NoError(t, registry.RegisterService(m))
	require.NoError(t, registry.RegisterService(s))
	require.Equal(t, 2, len(registry.serviceTypes))

	_, exists := registry.services[reflect.TypeOf(m)]
	assert.True(t, exists)
	_, exists = registry.services[reflect.TypeOf(s)]
	assert.True(t, exists)
}

func TestFetchService(t *testing.T) {
	registry := NewServiceRegistry()
	m := &mockService{}
	require.NoError(t, registry.RegisterService(m))

	assert.ErrorIs(t, registry.FetchService(*m), errNotPointer)

	var s *secondMockService
	assert.ErrorIs(t, registry.FetchService(&s), errUnknownService)

	var m2 *mockService
	require.NoError(t, registry.FetchService(&m2))
	require.Same(t, m, m2)
}

func TestStartStopOrder(t *testing.T) {
	var events []string
	registry := NewServiceRegistry()
	require.NoError(t, registry.RegisterService(&mockService{events: &events, stopErr: errors.New("busy")}))
	require.NoError(t, registry.RegisterService(&secondMockService{events: &events}))

	registry.StartAll()
	err := registry.StopAll()
	assert.ErrorContains(t, err, "busy")
	assert.Equal(t, []string{"start first", "start second", "stop second", "stop first"}, events)
}

func TestServiceStatus(t *testing.T) {
	registry := NewServiceRegistry()
	m := &mockService{}
	s := &secondMockService{}
	require.NoError(t, registry.RegisterService(m))
	require.NoError(t, registry.RegisterService(s))

	m.status = errors.New("something bad has happened")
	s.status = errors.New("woah, horsee")

	statuses := registry.Statuses()
	assert.ErrorContains(t, statuses[reflect.TypeOf(m)], "something bad has happened")
	assert.ErrorContains(t, statuses[reflect.TypeOf(s)], "woah, horsee")
}
