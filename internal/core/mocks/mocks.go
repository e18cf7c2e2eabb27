package mocks

import (
	"context"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockLibraryRepository is a mock implementation of ports.LibraryRepository
type MockLibraryRepository struct {
	mock.Mock
}

func NewMockLibraryRepository() *MockLibraryRepository {
	return &MockLibraryRepository{}
}

func (m *MockLibraryRepository) Create(ctx context.Context, library *domain.Library) (*domain.Library, error) {
	args := m.Called(ctx, library)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func (m *MockLibraryRepository) GetByID(ctx context.Context, id string) (*domain.Library, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func (m *MockLibraryRepository) Update(ctx context.Context, library *domain.Library) (*domain.Library, error) {
	args := m.Called(ctx, library)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func (m *MockLibraryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBookingRepository is a mock implementation of ports.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{}
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByLibrary(ctx context.Context, libraryID string, limit, offset int) ([]*domain.Booking, error) {
	args := m.Called(ctx, libraryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

// MockSeatRepository is a mock implementation of ports.SeatRepository
type MockSeatRepository struct {
	mock.Mock
}

func NewMockSeatRepository() *MockSeatRepository {
	return &MockSeatRepository{}
}

func (m *MockSeatRepository) Upsert(ctx context.Context, seat domain.SeatAvailability) (*domain.SeatAvailability, error) {
	args := m.Called(ctx, seat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatAvailability), args.Error(1)
}

func (m *MockSeatRepository) ListByLibrary(ctx context.Context, libraryID string) ([]*domain.SeatAvailability, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SeatAvailability), args.Error(1)
}

// MockNotificationRepository is a mock implementation of ports.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	args := m.Called(ctx, notification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

// MockRealtimeServer is a mock implementation of ports.RealtimeServer
type MockRealtimeServer struct {
	mock.Mock
}

func NewMockRealtimeServer() *MockRealtimeServer {
	return &MockRealtimeServer{}
}

func (m *MockRealtimeServer) Emit(room string, event domain.EventType, payload any) error {
	args := m.Called(room, event, payload)
	return args.Error(0)
}

func (m *MockRealtimeServer) FetchConnectedSockets(ctx context.Context) ([]domain.SocketSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocketSnapshot), args.Error(1)
}

// MockRealtimeRouter is a mock implementation of ports.RealtimeRouter
type MockRealtimeRouter struct {
	mock.Mock
}

var _ ports.RealtimeRouter = (*MockRealtimeRouter)(nil)

func NewMockRealtimeRouter() *MockRealtimeRouter {
	return &MockRealtimeRouter{}
}

func (m *MockRealtimeRouter) EmitBookingCreated(booking *domain.Booking) {
	m.Called(booking)
}

func (m *MockRealtimeRouter) EmitBookingUpdated(booking *domain.Booking) {
	m.Called(booking)
}

func (m *MockRealtimeRouter) EmitBookingCancelled(bookingID string, booking *domain.Booking) {
	m.Called(bookingID, booking)
}

func (m *MockRealtimeRouter) EmitBookingCheckIn(booking *domain.Booking) {
	m.Called(booking)
}

func (m *MockRealtimeRouter) EmitBookingCheckOut(booking *domain.Booking) {
	m.Called(booking)
}

func (m *MockRealtimeRouter) EmitLibraryCreated(library *domain.Library) {
	m.Called(library)
}

func (m *MockRealtimeRouter) EmitLibraryUpdated(library *domain.Library) {
	m.Called(library)
}

func (m *MockRealtimeRouter) EmitLibraryDeleted(libraryID string) {
	m.Called(libraryID)
}

func (m *MockRealtimeRouter) EmitPricingUpdated(update domain.PricingUpdate) {
	m.Called(update)
}

func (m *MockRealtimeRouter) EmitSeatAvailability(seat domain.SeatAvailability) {
	m.Called(seat)
}

func (m *MockRealtimeRouter) SendNotification(userID string, notification *domain.Notification) {
	m.Called(userID, notification)
}

func (m *MockRealtimeRouter) BroadcastToRole(role domain.Role, event domain.EventType, data any) {
	m.Called(role, event, data)
}

func (m *MockRealtimeRouter) SetServer(server ports.RealtimeServer) {
	m.Called(server)
}

func (m *MockRealtimeRouter) Server() ports.RealtimeServer {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(ports.RealtimeServer)
}

func (m *MockRealtimeRouter) ConnectionStats(ctx context.Context) (*domain.ConnectionStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionStats), args.Error(1)
}

// MockLibraryService is a mock implementation of ports.LibraryService
type MockLibraryService struct {
	mock.Mock
}

func NewMockLibraryService() *MockLibraryService {
	return &MockLibraryService{}
}

func (m *MockLibraryService) CreateLibrary(ctx context.Context, params ports.CreateLibraryParams) (*domain.Library, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func (m *MockLibraryService) GetLibrary(ctx context.Context, libraryID string) (*domain.Library, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func (m *MockLibraryService) UpdateLibrary(ctx context.Context, params ports.UpdateLibraryParams) (*domain.Library, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func (m *MockLibraryService) DeleteLibrary(ctx context.Context, libraryID string) error {
	args := m.Called(ctx, libraryID)
	return args.Error(0)
}

func (m *MockLibraryService) UpdatePricing(ctx context.Context, params ports.UpdatePricingParams) (*domain.Library, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

// MockBookingService is a mock implementation of ports.BookingService
type MockBookingService struct {
	mock.Mock
}

func NewMockBookingService() *MockBookingService {
	return &MockBookingService{}
}

func (m *MockBookingService) CreateBooking(ctx context.Context, params ports.CreateBookingParams) (*domain.Booking, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) RescheduleBooking(ctx context.Context, params ports.RescheduleBookingParams) (*domain.Booking, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CheckIn(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CheckOut(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListLibraryBookings(ctx context.Context, params ports.ListBookingsParams) ([]*domain.Booking, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

// MockSeatService is a mock implementation of ports.SeatService
type MockSeatService struct {
	mock.Mock
}

func NewMockSeatService() *MockSeatService {
	return &MockSeatService{}
}

func (m *MockSeatService) SetAvailability(ctx context.Context, params ports.SetSeatAvailabilityParams) (*domain.SeatAvailability, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatAvailability), args.Error(1)
}

func (m *MockSeatService) ListSeats(ctx context.Context, libraryID string) ([]*domain.SeatAvailability, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SeatAvailability), args.Error(1)
}

// MockNotificationService is a mock implementation of ports.NotificationService
type MockNotificationService struct {
	mock.Mock
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) Send(ctx context.Context, params ports.SendNotificationParams) (*domain.Notification, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}
