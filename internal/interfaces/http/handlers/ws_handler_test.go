package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barberq.backend/internal/domain/entities"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func bookFor(t *testing.T, env *testEnv, shop *entities.Merchant, cut *entities.Service, token string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/merchants/"+shop.ID.String()+"/bookings", token, gin.H{
		"serviceIds": []uuid.UUID{cut.ID},
		"bookingDay": tomorrow(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "id").String()
}

func TestWSHandler_BarbershopStreamsTurnUpdates(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.user(t, "owner", entities.UserRoleBarber)
	_, customerToken := env.user(t, "customer", entities.UserRoleCustomer)
	shop, cut := env.shop(t, owner)
	bookingID := bookFor(t, env, shop, cut, customerToken)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/barbershop/"+shop.ID.String()), nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readFrame(t, conn)
	assert.Equal(t, entities.PayloadTurnStatus, gjson.Get(initial, "type").String())
	assert.Equal(t, int64(0), gjson.Get(initial, "current_turn_number").Int())
	assert.Equal(t, int64(0), gjson.Get(initial, "finished_bookings_count").Int())

	// inbound frames are ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"hello":"there"}`)))

	confirmed := env.do(t, http.MethodPost, "/bookings/"+bookingID+"/confirm", ownerToken, nil)
	require.Equal(t, http.StatusOK, confirmed.Code, confirmed.Body.String())

	update := readFrame(t, conn)
	assert.Equal(t, entities.PayloadBookingTurnUpdate, gjson.Get(update, "type").String())
	assert.Equal(t, bookingID, gjson.Get(update, "booking_id").String())
	assert.Equal(t, int64(1), gjson.Get(update, "current_turn_number").Int())
}

func TestWSHandler_BarbershopUnknownShop(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/barbershop/"+uuid.NewString()), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWSHandler_ChatRefusesBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.user(t, "owner", entities.UserRoleBarber)
	_, customerToken := env.user(t, "customer", entities.UserRoleCustomer)
	_, strangerToken := env.user(t, "stranger", entities.UserRoleCustomer)
	shop, cut := env.shop(t, owner)
	bookingID := bookFor(t, env, shop, cut, customerToken)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"no token", "/ws/chat/" + bookingID, http.StatusUnauthorized},
		{"bad token", "/ws/chat/" + bookingID + "?token=garbage", http.StatusUnauthorized},
		{"not a participant", "/ws/chat/" + bookingID + "?token=" + strangerToken, http.StatusForbidden},
		{"unknown booking", "/ws/chat/" + uuid.NewString() + "?token=" + customerToken, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.path), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestWSHandler_ChatRelaysMessages(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.user(t, "owner", entities.UserRoleBarber)
	customer, customerToken := env.user(t, "customer", entities.UserRoleCustomer)
	shop, cut := env.shop(t, owner)
	bookingID := bookFor(t, env, shop, cut, customerToken)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+ownerToken)
	ownerConn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chat/"+bookingID), header)
	require.NoError(t, err)
	defer ownerConn.Close()

	customerConn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chat/"+bookingID+"?token="+customerToken), nil)
	require.NoError(t, err)
	defer customerConn.Close()

	require.NoError(t, customerConn.WriteJSON(map[string]string{"message": "Running 5 minutes late"}))

	for _, conn := range []*websocket.Conn{ownerConn, customerConn} {
		frame := readFrame(t, conn)
		assert.Equal(t, entities.PayloadChatMessage, gjson.Get(frame, "type").String())
		assert.Equal(t, "Running 5 minutes late", gjson.Get(frame, "message").String())
		assert.Equal(t, customer.ID.String(), gjson.Get(frame, "sender_id").String())
	}

	require.NoError(t, customerConn.WriteJSON(map[string]string{"message": "   "}))
	errFrame := readFrame(t, customerConn)
	assert.Equal(t, "error", gjson.Get(errFrame, "type").String())
	assert.NotEmpty(t, gjson.Get(errFrame, "error").String())

	// the socket message is stored like a REST one
	list := env.do(t, http.MethodGet, "/bookings/"+bookingID+"/messages", ownerToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, "Running 5 minutes late", gjson.Get(list.Body.String(), "items.0.message").String())
}
