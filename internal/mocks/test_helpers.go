// Package mocks provides in-memory implementations of the port interfaces
// and fixtures shared by the package tests.
package mocks

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
)

var testSigningKey = []byte("evaluation-client-test-key")

// CreateTestToken mints an HS256 token shaped like the server's: id, role,
// department_id and exp claims.
func CreateTestToken(role domain.Role, expired bool) string {
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}

	claims := jwt.MapClaims{
		"id":   42,
		"role": string(role),
		"exp":  exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString(testSigningKey)
	return tokenString
}

// CreateTestSession returns a valid session for role.
func CreateTestSession(role domain.Role) domain.Session {
	return domain.Session{Token: CreateTestToken(role, false), Role: role}
}
