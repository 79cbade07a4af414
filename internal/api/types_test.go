package api

import (
	"encoding/json"
	"testing"
)

func TestProductDecodesSnakeCase(t *testing.T) {
	raw := `{
		"id": 5,
		"vendor_user_id": 7,
		"name": "Habesha dress",
		"price": 1200.5,
		"image_url": "https://cdn/dress.png",
		"colors": ["white", "gold"],
		"sizes": ["S", "M"],
		"is_featured": true
	}`

	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID != 5 || p.VendorUserID != 7 || p.Price != 1200.5 {
		t.Errorf("unexpected product %+v", p)
	}
	if p.ImageURL != "https://cdn/dress.png" || !p.IsFeatured {
		t.Errorf("unexpected product %+v", p)
	}
	if len(p.Colors) != 2 || p.Colors[1] != "gold" {
		t.Errorf("unexpected colors %v", p.Colors)
	}
}

func TestProductDecodesCamelCaseGeneration(t *testing.T) {
	raw := `{
		"id": "5",
		"vendorUserId": 7,
		"name": "Habesha dress",
		"price": "1200.50",
		"imageUrl": "https://cdn/dress.png",
		"colors": "white, gold, ",
		"sizes": "M",
		"isFeatured": true
	}`

	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID != 5 || p.VendorUserID != 7 || p.Price != 1200.5 {
		t.Errorf("unexpected product %+v", p)
	}
	if p.ImageURL != "https://cdn/dress.png" || !p.IsFeatured {
		t.Errorf("unexpected product %+v", p)
	}
	if len(p.Colors) != 2 || p.Colors[0] != "white" || p.Colors[1] != "gold" {
		t.Errorf("expected comma-joined colors split and trimmed, got %v", p.Colors)
	}
	if len(p.Sizes) != 1 || p.Sizes[0] != "M" {
		t.Errorf("unexpected sizes %v", p.Sizes)
	}
}

func TestProductSnakeCaseWinsWhenBothPresent(t *testing.T) {
	raw := `{"id": 1, "image_url": "snake.png", "imageUrl": "camel.png"}`

	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.ImageURL != "snake.png" {
		t.Errorf("expected snake_case to win, got %q", p.ImageURL)
	}
}

func TestProductMarshalsSnakeCase(t *testing.T) {
	raw, err := json.Marshal(Product{ID: 5, VendorUserID: 7, Name: "x", ImageURL: "u"})
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"vendor_user_id", "image_url", "is_featured"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in output %s", key, raw)
		}
	}
	if _, ok := m["imageUrl"]; ok {
		t.Errorf("did not expect camelCase keys in output %s", raw)
	}
}

func TestUserJoinsNameParts(t *testing.T) {
	raw := `{
		"id": 3,
		"first_name": "Almaz",
		"last_name": "Kebede",
		"email": "almaz@example.com",
		"role": "user",
		"email_verified": false,
		"account_status": "active"
	}`

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatal(err)
	}
	m := u.ToModel()
	if m.Name != "Almaz Kebede" {
		t.Errorf("expected joined name, got %q", m.Name)
	}
	if m.ID != 3 || m.Email != "almaz@example.com" {
		t.Errorf("unexpected user %+v", m)
	}
}

func TestUserPlainNameWinsOverParts(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"name": "Almaz K", "first_name": "Almaz", "last_name": "Kebede"}`), &u); err != nil {
		t.Fatal(err)
	}
	if got := u.DisplayName(); got != "Almaz K" {
		t.Errorf("expected the plain name field to win, got %q", got)
	}
}

func TestAuthResponseDecodesFlatAccount(t *testing.T) {
	// the current backend build returns the account fields at the top
	// level instead of wrapping them in a "user" object
	raw := `{
		"id": 42,
		"first_name": "Almaz",
		"last_name": "Kebede",
		"email": "almaz@example.com",
		"role": "user",
		"email_verified": false,
		"account_status": "active"
	}`

	var r AuthResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(err)
	}
	if r.User.ID != 42 {
		t.Fatalf("expected the flat payload to populate the user, got %+v", r)
	}
	if got := r.User.ToModel().Name; got != "Almaz Kebede" {
		t.Errorf("unexpected name %q", got)
	}
}

func TestAuthResponseDecodesWrappedAccount(t *testing.T) {
	raw := `{"token": "tkn", "user": {"id": 42, "name": "Almaz", "email": "almaz@example.com"}}`

	var r AuthResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(err)
	}
	if r.Token != "tkn" || r.User.ID != 42 || r.User.Name != "Almaz" {
		t.Errorf("unexpected response %+v", r)
	}
}

func TestFlexScalars(t *testing.T) {
	var v struct {
		A FlexInt64   `json:"a"`
		B FlexInt64   `json:"b"`
		C FlexFloat64 `json:"c"`
		D FlexInt64   `json:"d"`
	}
	raw := `{"a": 12, "b": "34", "c": "5.5", "d": null}`
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != 12 || v.B != 34 || v.C != 5.5 || v.D != 0 {
		t.Errorf("unexpected values %+v", v)
	}
}
