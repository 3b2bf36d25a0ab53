package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProfileFullName(t *testing.T) {
	profile := Profile{FirstName: "Harry", LastName: "Potter"}
	assert.Equal(t, "Harry Potter", profile.FullName())

	profile = Profile{FirstName: "Cher"}
	assert.Equal(t, "Cher", profile.FullName())

	assert.Equal(t, "", Profile{}.FullName())
}

func TestContractInvolves(t *testing.T) {
	client := uuid.New()
	contractor := uuid.New()
	contract := Contract{ClientID: client, ContractorID: contractor}

	assert.True(t, contract.Involves(client))
	assert.True(t, contract.Involves(contractor))
	assert.False(t, contract.Involves(uuid.New()))
}

func TestPrincipalRoles(t *testing.T) {
	client := Principal{ID: uuid.New(), Type: ProfileTypeClient}
	assert.True(t, client.IsClient())
	assert.False(t, client.IsContractor())

	contractor := Principal{ID: uuid.New(), Type: ProfileTypeContractor}
	assert.True(t, contractor.IsContractor())
	assert.False(t, contractor.IsClient())
}
