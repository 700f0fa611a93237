package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeDomain("WWW.Example.COM"))
	assert.Equal(t, "shop.example.in", NormalizeDomain("shop.example.in"))
	assert.Equal(t, "example.com", NormalizeDomain(" www.example.com "))
}

func TestIsValidPrice(t *testing.T) {
	assert.True(t, IsValidPrice(MinValidPrice))
	assert.True(t, IsValidPrice(19.99))
	assert.True(t, IsValidPrice(MaxValidPrice))
	assert.False(t, IsValidPrice(0.5))
	assert.False(t, IsValidPrice(0))
	assert.False(t, IsValidPrice(MaxValidPrice+1))
	assert.False(t, IsValidPrice(-10))
}

func TestLocatorPairIsComplete(t *testing.T) {
	assert.True(t, LocatorPair{NameLocator: "h1", PriceLocator: ".price"}.IsComplete())
	assert.False(t, LocatorPair{NameLocator: "h1"}.IsComplete())
	assert.False(t, LocatorPair{NameLocator: "  ", PriceLocator: ".price"}.IsComplete())
	assert.False(t, LocatorPair{}.IsComplete())
}

func TestPriceCandidateRejected(t *testing.T) {
	assert.False(t, PriceCandidate{Amount: 19.99}.Rejected())
	assert.True(t, PriceCandidate{Amount: 4.3, IsRating: true}.Rejected())
	assert.True(t, PriceCandidate{Amount: 500, IsDiscount: true}.Rejected())
	assert.True(t, PriceCandidate{Amount: 99, IsFee: true}.Rejected())
	assert.True(t, PriceCandidate{Amount: 499, IsStrikethrough: true}.Rejected())
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &FetchError{URL: "https://shop.example.com", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "shop.example.com")
}
