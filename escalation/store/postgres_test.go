package store

import "testing"

func TestNewPostgresStoreRejectsInvalidConfig(t *testing.T) {
	cfg := &PostgresConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "postgres", DBName: "coursemate", SSLMode: "maybe",
	}
	if _, err := NewPostgresStore(cfg); err == nil {
		t.Error("NewPostgresStore() accepted invalid ssl mode")
	}

	cfg = &PostgresConfig{Port: 5432}
	if _, err := NewPostgresStore(cfg); err == nil {
		t.Error("NewPostgresStore() accepted empty connection fields")
	}
}

func TestNewMongoStoreRejectsInvalidConfig(t *testing.T) {
	if _, err := NewMongoStore(&MongoConfig{Database: "coursemate", Collection: "escalations"}); err == nil {
		t.Error("NewMongoStore() accepted empty URI")
	}
}
