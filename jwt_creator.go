package main

import (
	"crypto/rsa"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"go-docextract/models"
)

// JwtCreator signs the extracted record so the intake form filler can trust
// that the data came from this service unmodified.
type JwtCreator interface {
	CreatePassportJwt(record models.PassportRecord) (jwt string, err error)
	CreateAuthFormJwt(record models.AuthFormRecord) (jwt string, err error)
}

func NewDefaultJwtCreator(privateKeyPath string, issuerId string, validity time.Duration) (*DefaultJwtCreator, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)

	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)

	if err != nil {
		return nil, err
	}

	if validity <= 0 {
		validity = time.Hour
	}

	return &DefaultJwtCreator{
		issuerId:   issuerId,
		privateKey: privateKey,
		validity:   validity,
	}, nil
}

type DefaultJwtCreator struct {
	privateKey *rsa.PrivateKey
	issuerId   string
	validity   time.Duration
}

const DocTypePassport = "passport"
const DocTypeAuthForm = "auth_form"

func (jc *DefaultJwtCreator) CreatePassportJwt(record models.PassportRecord) (string, error) {
	return jc.createJwt(DocTypePassport, record)
}

func (jc *DefaultJwtCreator) CreateAuthFormJwt(record models.AuthFormRecord) (string, error) {
	return jc.createJwt(DocTypeAuthForm, record)
}

func (jc *DefaultJwtCreator) createJwt(docType string, record any) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      jc.issuerId,
		"iat":      now.Unix(),
		"exp":      now.Add(jc.validity).Unix(),
		"doc_type": docType,
		"data":     record,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(jc.privateKey)
}
