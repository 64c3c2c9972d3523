package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop_back_end/internal/models"
	"proshop_back_end/internal/store"
)

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) SetPaid(ctx context.Context, id primitive.ObjectID, paid bool, paidAt *time.Time) error {
	args := m.Called(ctx, id, paid, paidAt)
	return args.Error(0)
}

func (m *MockOrderStore) SetDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type stubProductNames struct {
	names map[string]string
}

func (s *stubProductNames) Names(ctx context.Context, ids []primitive.ObjectID) map[string]string {
	return s.names
}

func validInput(productID primitive.ObjectID) CreateOrderInput {
	return CreateOrderInput{
		OrderItems: []CreateOrderItemInput{
			{ID: productID.Hex(), Name: "Clavier", Qty: 2, Price: 10, Image: "/images/clavier.jpg"},
		},
		ShippingAddress: models.ShippingAddress{
			Address: "12 rue de la Paix", City: "Paris", PostalCode: "75002", Country: "FR",
		},
		PaymentMethod: "PayPal",
		ItemsPrice:    20,
		TaxPrice:      0,
		ShippingPrice: 0,
		TotalPrice:    20,
	}
}

func TestCreateOrder_DefaultsAndRemapping(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	productID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()

	orders.On("Insert", mock.Anything, mock.AnythingOfType("*models.Order")).
		Return(&models.Order{}, nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			assert.False(t, order.IsPaid)
			assert.Nil(t, order.PaidAt)
			assert.False(t, order.IsDelivered)
			assert.Nil(t, order.DeliveredAt)
			assert.Equal(t, ownerID, order.User)
			// l'_id client devient la référence product de la nouvelle ligne
			require.Len(t, order.OrderItems, 1)
			assert.Equal(t, productID, order.OrderItems[0].Product)
			assert.Equal(t, "Clavier", order.OrderItems[0].Name)
			assert.Equal(t, 2, order.OrderItems[0].Qty)
			assert.Equal(t, 20.0, order.TotalPrice)
		})

	_, err := svc.CreateOrder(context.Background(), validInput(productID), ownerID)
	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	in := validInput(primitive.NewObjectID())
	in.OrderItems = nil

	_, err := svc.CreateOrder(context.Background(), in, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNoOrderItems)
	// rien ne doit être persisté
	orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateOrder_BadProductID(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	in := validInput(primitive.NewObjectID())
	in.OrderItems[0].ID = "pas-un-objectid"

	_, err := svc.CreateOrder(context.Background(), in, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNoOrderItems)
	orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMarkPaid_WithTimestamp(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	id := primitive.NewObjectID()
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	orders.On("SetPaid", mock.Anything, id, true, &at).Return(nil)

	err := svc.MarkPaid(context.Background(), id.Hex(), true, &at)
	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestMarkPaid_DefaultsToNow(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	id := primitive.NewObjectID()
	before := time.Now().UTC()

	orders.On("SetPaid", mock.Anything, id, true, mock.AnythingOfType("*time.Time")).
		Return(nil).
		Run(func(args mock.Arguments) {
			at := args.Get(3).(*time.Time)
			require.NotNil(t, at)
			assert.WithinDuration(t, before, *at, 2*time.Second)
		})

	err := svc.MarkPaid(context.Background(), id.Hex(), true, nil)
	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestMarkPaid_FalseClearsPaidAt(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	id := primitive.NewObjectID()
	at := time.Now().UTC()

	// même avec un horodatage fourni, paid=false écrit null
	orders.On("SetPaid", mock.Anything, id, false, (*time.Time)(nil)).Return(nil)

	err := svc.MarkPaid(context.Background(), id.Hex(), false, &at)
	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestMarkPaid_NotFound(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	id := primitive.NewObjectID()
	orders.On("SetPaid", mock.Anything, id, true, mock.Anything).Return(store.ErrOrderNotFound)

	err := svc.MarkPaid(context.Background(), id.Hex(), true, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMarkPaid_InvalidID(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	err := svc.MarkPaid(context.Background(), "nope", true, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	orders.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkDelivered_RefreshesTimestamp(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	id := primitive.NewObjectID()
	var firstAt, secondAt time.Time

	orders.On("SetDelivered", mock.Anything, id, mock.AnythingOfType("time.Time")).
		Return(&models.Order{ID: id, IsDelivered: true}, nil).
		Run(func(args mock.Arguments) {
			at := args.Get(2).(time.Time)
			if firstAt.IsZero() {
				firstAt = at
			} else {
				secondAt = at
			}
		})

	_, err := svc.MarkDelivered(context.Background(), id.Hex())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	order, err := svc.MarkDelivered(context.Background(), id.Hex())
	require.NoError(t, err)

	// un second appel reste livré et rafraîchit l'horodatage
	assert.True(t, order.IsDelivered)
	assert.True(t, secondAt.After(firstAt))
}

func TestMarkDelivered_NotFound(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	id := primitive.NewObjectID()
	orders.On("SetDelivered", mock.Anything, id, mock.Anything).Return(nil, store.ErrOrderNotFound)

	_, err := svc.MarkDelivered(context.Background(), id.Hex())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderByID_PopulatesNameAndEmail(t *testing.T) {
	orders := new(MockOrderStore)
	users := new(MockUserStore)
	svc := NewOrderService(orders, users, nil)

	orderID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	orders.On("FindByID", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, User: userID, TotalPrice: 42}, nil)
	users.On("FindByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Name: "Alice", Email: "alice@example.com"}, nil)

	got, err := svc.OrderByID(context.Background(), orderID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.User.Name)
	assert.Equal(t, "alice@example.com", got.User.Email)
	assert.Equal(t, userID, got.User.ID)
	assert.Equal(t, 42.0, got.TotalPrice)
}

func TestOrderByID_NotFound(t *testing.T) {
	orders := new(MockOrderStore)
	svc := NewOrderService(orders, new(MockUserStore), nil)

	orderID := primitive.NewObjectID()
	orders.On("FindByID", mock.Anything, orderID).Return(nil, store.ErrOrderNotFound)

	_, err := svc.OrderByID(context.Background(), orderID.Hex())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderByID_InvalidHex(t *testing.T) {
	svc := NewOrderService(new(MockOrderStore), new(MockUserStore), nil)

	_, err := svc.OrderByID(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAllOrders_PopulatesIDAndName(t *testing.T) {
	orders := new(MockOrderStore)
	users := new(MockUserStore)
	svc := NewOrderService(orders, users, nil)

	userID := primitive.NewObjectID()
	orders.On("FindAll", mock.Anything).
		Return([]models.Order{{ID: primitive.NewObjectID(), User: userID}}, nil)
	users.On("FindByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Name: "Bob", Email: "bob@example.com"}, nil)

	got, err := svc.AllOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, userID, got[0].User.ID)
	assert.Equal(t, "Bob", got[0].User.Name)
	assert.Empty(t, got[0].User.Email) // la vue admin n'expose pas l'email
}

func TestOrdersForUser_EnrichesProductNames(t *testing.T) {
	orders := new(MockOrderStore)
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	svc := NewOrderService(orders, new(MockUserStore),
		&stubProductNames{names: map[string]string{productID.Hex(): "Clavier mécanique"}})

	orders.On("FindByUser", mock.Anything, userID).Return([]models.Order{
		{OrderItems: []models.OrderItem{{Product: productID, Name: "Vieux nom"}}},
	}, nil)

	got, err := svc.OrdersForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Clavier mécanique", got[0].OrderItems[0].Name)
}

func TestOrdersForUser_Empty(t *testing.T) {
	orders := new(MockOrderStore)
	userID := primitive.NewObjectID()
	svc := NewOrderService(orders, new(MockUserStore), nil)

	orders.On("FindByUser", mock.Anything, userID).Return([]models.Order{}, nil)

	got, err := svc.OrdersForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
