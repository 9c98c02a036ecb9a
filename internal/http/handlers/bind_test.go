package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/http/handlers"
)

type bindTarget struct {
	Title string  `json:"title" binding:"required,min=3"`
	Price *float64 `json:"price" binding:"omitempty,gte=0"`
}

func bindRouter() *gin.Engine {
	engine := gin.New()
	engine.POST("/bind", func(c *gin.Context) {
		var req bindTarget
		if !handlers.BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})
	return engine
}

type bindErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			JSON   string `json:"json"`
			Fields []struct {
				Field   string `json:"field"`
				Rule    string `json:"rule"`
				Message string `json:"message"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func decodeBindError(t *testing.T, body []byte) bindErrorBody {
	t.Helper()

	var out bindErrorBody
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal error body: %v (%s)", err, body)
	}

	return out
}

func TestBindJSONReportsFieldsByJSONName(t *testing.T) {
	router := bindRouter()

	w := postJSON(router, "/bind", `{"price":1.5}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w.Body.Bytes())

	if len(resp.Error.Details.Fields) != 1 {
		t.Fatalf("fields = %+v, want one violation", resp.Error.Details.Fields)
	}

	f := resp.Error.Details.Fields[0]

	if f.Field != "title" {
		t.Fatalf("field = %q, want the json name title", f.Field)
	}

	if f.Rule != "required" || f.Message != "is required" {
		t.Fatalf("rule/message = %q/%q", f.Rule, f.Message)
	}
}

func TestBindJSONTypeMismatch(t *testing.T) {
	router := bindRouter()

	w := postJSON(router, "/bind", `{"title":"Noche","price":"free"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w.Body.Bytes())

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("json marker = %q, want invalid_json_type", resp.Error.Details.JSON)
	}

	if len(resp.Error.Details.Fields) != 1 || resp.Error.Details.Fields[0].Field != "price" {
		t.Fatalf("fields = %+v, want a price violation", resp.Error.Details.Fields)
	}
}

func TestBindJSONSyntaxError(t *testing.T) {
	router := bindRouter()

	w := postJSON(router, "/bind", `{"title": "Noche",`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w.Body.Bytes())

	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("json marker = %q, want invalid_json_syntax", resp.Error.Details.JSON)
	}
}
