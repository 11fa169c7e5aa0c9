package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, Tokens: httputil.StaticToken("tok"), Logger: logging.Discard()})
}

func TestSendCoinsPostsAndNormalizesTimestamp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/professor/send-coins", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req moeda.SendCoinsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(15), req.Amount)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"tx-1","professorId":"p","studentId":"s","amount":15,"reason":"r","created_at":"2026-03-01T12:00:00Z"}`))
	})

	tx, err := c.SendCoins(context.Background(), moeda.SendCoinsRequest{ProfessorID: "p", StudentID: "s", Amount: 15, Reason: "r"})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC), tx.CreatedAt.UTC())
}

func TestPathsAreEscaped(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		if got == "" {
			got = r.URL.EscapedPath()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.StudentTransactions(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/students/a%2Fb/transactions", got)

	_, err = c.ProfessorTransactions(context.Background(), "p 1")
	require.NoError(t, err)
	assert.Equal(t, "professorId=p+1", got)
}

func TestErrorsCarryServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"vantagem esgotada"}`))
	})

	_, err := c.Redeem(context.Background(), moeda.RedeemRequest{AdvantageID: "a", StudentID: "s"})
	require.Error(t, err)
	assert.Equal(t, "vantagem esgotada", err.Error())
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(err))
}

func TestLoginUnknownRole(t *testing.T) {
	c := New(Config{BaseURL: "http://unused.invalid"})
	_, err := c.Login(context.Background(), moeda.Role("admin"), "a@b.c", "x")
	assert.ErrorIs(t, err, moeda.ErrNotImplemented)
}

func TestDeleteAdvantageAcceptsNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/advantages/adv-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.DeleteAdvantage(context.Background(), "adv-1"))
}

func TestUpdateStudentSendsOnlySetFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/students/stud-1", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"course": "Direito"}, body)
		_, _ = w.Write([]byte(`{"id":"stud-1","name":"Ana","course":"Direito","coinBalance":40}`))
	})
	course := "Direito"
	st, err := c.UpdateStudent(context.Background(), "stud-1", moeda.StudentUpdate{Course: &course})
	require.NoError(t, err)
	assert.Equal(t, int64(40), st.CoinBalance)
}

func TestAccountLookupsAndDeletes(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"id":"inst-1","name":"PUC Minas"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	inst, err := c.GetInstitution(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "PUC Minas", inst.Name)
	require.NoError(t, c.DeleteStudent(ctx, "stud-1"))
	require.NoError(t, c.DeleteProfessor(ctx, "prof-2"))
	assert.Equal(t, []string{"GET /institutions/inst-1", "DELETE /students/stud-1", "DELETE /professors/prof-2"}, seen)
}
