package xa

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dtm-labs/client/dtmcli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/tpcc-bench/internal/config"
	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

func TestDBConf(t *testing.T) {
	conf := DBConf(config.Database{Host: "db", Port: 5433, User: "bench", Password: "secret", Name: "tpcc"})

	assert.Equal(t, "postgres", conf.Driver)
	assert.Equal(t, "db", conf.Host)
	assert.Equal(t, int64(5433), conf.Port)
	assert.Equal(t, "bench", conf.User)
	assert.Equal(t, "tpcc", conf.Db)
}

func TestBranchStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"explicit failure", fmt.Errorf("%w: bad body", dtmcli.ErrFailure), http.StatusConflict},
		{"not found", tpcc.NotFound(tpcc.EntityItem, "i_id=%d", 9), http.StatusConflict},
		{"invalid input", fmt.Errorf("%w: o_ol_cnt", tpcc.ErrInvalidInput), http.StatusConflict},
		{"numeric overflow aborts", &tpcc.TxError{Op: "insert history", Kind: tpcc.ErrConstraintViolation, Err: errors.New("22003")}, http.StatusConflict},
		{"timeout is retried", &tpcc.TxError{Op: "commit", Kind: tpcc.ErrTimeout, Err: errors.New("slow")}, http.StatusInternalServerError},
		{"connection is retried", &tpcc.TxError{Op: "begin", Kind: tpcc.ErrConnection, Err: errors.New("refused")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BranchStatus(tt.err))
		})
	}
}

func TestClient_BranchURL(t *testing.T) {
	client := NewClient("http://dtm:36789/api/dtmsvr", "http://tpccd:8080/")

	assert.Equal(t, "http://tpccd:8080/api/xa/neword", client.BranchURL(tpcc.TxNewOrder))
	assert.Equal(t, "http://tpccd:8080/api/xa/payment", client.BranchURL(tpcc.TxPayment))
}

func TestGenGid(t *testing.T) {
	t.Run("returns gid from dtm", func(t *testing.T) {
		dtm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "/newGid"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"gid":"gid-123","dtm_result":"SUCCESS"}`)
		}))
		defer dtm.Close()

		gid, err := genGid(dtm.URL)

		require.NoError(t, err)
		assert.Equal(t, "gid-123", gid)
	})

	t.Run("unavailable dtm becomes an error", func(t *testing.T) {
		dtm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer dtm.Close()

		_, err := genGid(dtm.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "dtm unavailable")
	})
}

func TestParticipant_RejectsCallWithoutXaQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	participant := NewParticipant(nil, dtmcli.DBConf{Driver: "postgres"})
	router := gin.New()
	router.POST("/api/xa/neword", participant.HandleNewOrder())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/xa/neword", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dtm_result")
}
