package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestReadDoc_IsValidSwagger(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc returned error: %v", err)
	}

	var doc struct {
		Swagger string                     `json:"swagger"`
		Info    struct{ Title string }     `json:"info"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("registered doc is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" || doc.Info.Title != "GCC Connect API" {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if _, ok := doc.Paths["/v1/auth/login"]; !ok {
		t.Fatalf("expected /v1/auth/login in paths, got %d paths", len(doc.Paths))
	}
}
