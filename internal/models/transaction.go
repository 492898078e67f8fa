package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput is returned when test transaction form values cannot be used.
var ErrInvalidInput = errors.New("invalid input")

const (
	TestTransactionPrefix = "TEST_"

	// Test transactions are always scored from the same location.
	DefaultLatitude  = 40.7128
	DefaultLongitude = -74.0060
)

// TransactionTypes lists the transaction types the scoring model was trained on.
var TransactionTypes = []string{"online", "in-store", "atm"}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Flag is a boolean that travels as 1/0, which is what the scoring service expects.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", b)
	}
	return nil
}

// TestTransaction is the synthetic record sent to the scoring service.
type TestTransaction struct {
	TransactionID   string  `json:"transaction_id"`
	Amount          float64 `json:"amount"`
	AmountLog       float64 `json:"amount_log"`
	Hour            int     `json:"hour"`
	DayOfWeek       int     `json:"day_of_week"`
	IsWeekend       Flag    `json:"is_weekend"`
	IsNight         Flag    `json:"is_night"`
	TransactionType string  `json:"transaction_type"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
}

// FormValue is a raw form value. JSON callers may send it as a string or a bare number.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	if string(b) == "null" {
		*v = ""
		return nil
	}
	*v = FormValue(b)
	return nil
}

// TestTransactionInput holds the raw values of the test form.
type TestTransactionInput struct {
	Amount FormValue `json:"amount" form:"amount"`
	Hour   FormValue `json:"hour" form:"hour"`
	Type   FormValue `json:"type" form:"type"`
	Day    FormValue `json:"day" form:"day"`
}

// ClassificationResult is the scoring service's verdict for one transaction.
type ClassificationResult struct {
	TransactionID    string    `json:"transaction_id,omitempty"`
	IsFraud          bool      `json:"is_fraud"`
	FraudProbability float64   `json:"fraud_probability"`
	RiskLevel        RiskLevel `json:"risk_level"`
}

// IsWeekendDay reports whether day_of_week (0=Monday) falls on a weekend.
func IsWeekendDay(day int) bool {
	return day >= 5
}

// IsNightHour reports whether hour is inside the 22:00-06:59 night window.
func IsNightHour(hour int) bool {
	return hour >= 22 || hour <= 6
}

// NewTestTransactionID builds a session-unique id from the submission time.
func NewTestTransactionID(now time.Time) string {
	return TestTransactionPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// NewTestTransaction validates the inputs and computes the derived fields.
func NewTestTransaction(id string, amount float64, hour, day int, txType string) (*TestTransaction, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidInput)
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: hour must be between 0 and 23", ErrInvalidInput)
	}
	if day < 0 || day > 6 {
		return nil, fmt.Errorf("%w: day must be between 0 and 6", ErrInvalidInput)
	}
	txType = strings.TrimSpace(txType)
	if txType == "" {
		return nil, fmt.Errorf("%w: transaction type is required", ErrInvalidInput)
	}

	return &TestTransaction{
		TransactionID:   id,
		Amount:          amount,
		AmountLog:       math.Log1p(amount),
		Hour:            hour,
		DayOfWeek:       day,
		IsWeekend:       Flag(IsWeekendDay(day)),
		IsNight:         Flag(IsNightHour(hour)),
		TransactionType: txType,
		Latitude:        DefaultLatitude,
		Longitude:       DefaultLongitude,
	}, nil
}

// ParseTestTransaction parses raw form values into a TestTransaction.
func ParseTestTransaction(id string, in TestTransactionInput) (*TestTransaction, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(string(in.Amount)), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, in.Amount)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(string(in.Hour)))
	if err != nil {
		return nil, fmt.Errorf("%w: hour %q is not an integer", ErrInvalidInput, in.Hour)
	}
	day, err := strconv.Atoi(strings.TrimSpace(string(in.Day)))
	if err != nil {
		return nil, fmt.Errorf("%w: day %q is not an integer", ErrInvalidInput, in.Day)
	}
	return NewTestTransaction(id, amount, hour, day, string(in.Type))
}
