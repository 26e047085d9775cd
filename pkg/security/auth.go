package security

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"stockledger/pkg/models"
)

var (
	jwtSecretOnce sync.Once
	jwtSecret     []byte
)

// secretKey loads JWT_SECRET on first use so that importing this package
// does not require the variable to be set.
func secretKey() []byte {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET")

		if secret == "" {
			if err := godotenv.Load(); err != nil {
				log.Printf("Warning: no .env file found: %v", err)
			}
			secret = os.Getenv("JWT_SECRET")
		}

		if secret == "" {
			log.Fatal("JWT_SECRET environment variable is not set")
		}

		jwtSecret = []byte(secret)
	})

	return jwtSecret
}

// AccountSource resolves an account id to its stored record. Satisfied
// by the accounts repository; kept as an interface so this package does
// not depend on where accounts live.
type AccountSource interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

// AuthenticateAccount resolves credentials to an account. Disabled
// accounts cannot log in.
func AuthenticateAccount(ctx context.Context, id, credential string, source AccountSource) (*models.Account, error) {
	account, err := source.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Disabled {
		return nil, fmt.Errorf("unknown or disabled account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.CredentialHash), []byte(credential)); err != nil {
		return nil, err
	}

	return account, nil
}

func GenerateJWT(accountID string, role string) (string, error) {
	claims := jwt.MapClaims{
		"accountID": accountID,
		"role":      role,
		"exp":       time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}
