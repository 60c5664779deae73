package utils

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grand Palace Theater", "grand-palace-theater"},
		{"  Caramel Popcorn (Large)  ", "caramel-popcorn-large"},
		{"UPPER_case & symbols!", "upper-case-symbols"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestGenerateToken(t *testing.T) {
	SetSecret("test-secret")
	expiresAt := time.Now().Add(time.Hour)

	first, err := GenerateToken(primitive.NewObjectID(), "", "customer", expiresAt)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := GenerateToken(primitive.NewObjectID(), "", "customer", expiresAt)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == "" || first == second {
		t.Error("tokens should be distinct non-empty values")
	}
}
