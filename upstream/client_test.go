package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/posgate/models"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type fakeAPI struct {
	t       *testing.T
	last    gqlRequest
	auth    string
	respond func(req gqlRequest) string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.last))
	f.auth = r.Header.Get("Authorization")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(f.respond(f.last)))
}

func newFake(t *testing.T, respond func(req gqlRequest) string) (*fakeAPI, *Client) {
	f := &fakeAPI{t: t, respond: respond}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, New(srv.URL)
}

func TestLoginSendsCredentials(t *testing.T) {
	f, c := newFake(t, func(gqlRequest) string {
		return `{"data":{"loginUser":{"accessToken":"tok-1"}}}`
	})

	token, err := c.Login(context.Background(), "waiter@demo.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Contains(t, f.last.Query, "loginUser")
	assert.Equal(t, "waiter@demo.com", f.last.Variables["email"])
	assert.Empty(t, f.auth)
}

func TestBearerTokenFromContext(t *testing.T) {
	f, c := newFake(t, func(gqlRequest) string {
		return `{"data":{"getFloors":[{"id":"f1","name":"Main","tables":[{"id":"t1","name":"1","status":"AVAILABLE"}]}]}}`
	})

	floors, err := c.Floors(WithToken(context.Background(), "abc"), "b1")
	require.NoError(t, err)
	require.Len(t, floors, 1)
	assert.Equal(t, models.TableAvailable, floors[0].Tables[0].Status)
	assert.Equal(t, "Bearer abc", f.auth)
	assert.Equal(t, "b1", f.last.Variables["businessId"])
}

func TestGetUserUnsuccessfulIsUnauthorized(t *testing.T) {
	_, c := newFake(t, func(gqlRequest) string {
		return `{"data":{"getUser":{"success":false,"errors":["user disabled"],"user":null}}}`
	})

	_, err := c.GetUser(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "user disabled")
}

func TestGraphQLErrorKeepsMessage(t *testing.T) {
	_, c := newFake(t, func(gqlRequest) string {
		return `{"errors":[{"message":"Table t9 is not occupied"}],"data":null}`
	})

	_, err := c.CreateOrder(context.Background(), "t9", "u1", []models.OrderInputItem{{ProductID: "p1", Quantity: 2}})
	require.Error(t, err)
	assert.Equal(t, "createOrder: Table t9 is not occupied", err.Error())
	assert.False(t, IsUnauthorized(err))
}

func TestCreateOrderInputShape(t *testing.T) {
	f, c := newFake(t, func(gqlRequest) string {
		return `{"data":{"createOrder":{"id":"t1","orders":[{"id":"o1","status":"PENDING","total":20}]}}}`
	})

	table, err := c.CreateOrder(context.Background(), "t1", "u1", []models.OrderInputItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, table.Orders, 1)

	input := f.last.Variables["input"].(map[string]any)
	assert.Equal(t, "t1", input["tableId"])
	assert.Equal(t, "u1", input["userId"])
	items := input["items"].([]any)
	assert.Equal(t, map[string]any{"productId": "p1", "quantity": float64(2)}, items[0])
}

func TestUnauthorizedGraphQLError(t *testing.T) {
	_, c := newFake(t, func(req gqlRequest) string {
		if strings.Contains(req.Query, "getAllOrders") {
			return `{"errors":[{"message":"Unauthorized"}]}`
		}
		return `{"data":{}}`
	})

	_, err := c.AllOrders(context.Background(), "b1")
	assert.True(t, IsUnauthorized(err))
}

func TestOrderMissingIsNil(t *testing.T) {
	_, c := newFake(t, func(gqlRequest) string { return `{"data":{"order":null}}` })

	order, err := c.Order(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestErrorsAreClassified(t *testing.T) {
	_, c := newFake(t, func(gqlRequest) string {
		return `{"errors":[{"message":"Invalid credentials"}],"data":null}`
	})
	_, err := c.Login(context.Background(), "w@demo.com", "bad")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "loginUser: Invalid credentials", err.Error())

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(broken.Close)

	_, err = New(broken.URL).Login(context.Background(), "w@demo.com", "123456")
	require.Error(t, err)
	assert.False(t, IsRejected(err))
	assert.False(t, IsUnauthorized(err))
	assert.True(t, strings.HasPrefix(err.Error(), "loginUser: "))
}
