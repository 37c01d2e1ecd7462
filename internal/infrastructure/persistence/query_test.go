package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

func TestAsDomainErr(t *testing.T) {
	assert.ErrorIs(t, asDomainErr(gorm.ErrRecordNotFound), shared.ErrNotFound)

	boom := errors.New("connection reset")
	assert.Equal(t, boom, asDomainErr(boom))

	assert.NoError(t, asDomainErr(nil))
}

func TestFromModels(t *testing.T) {
	ms := []models.CustomerModel{
		{Name: "Nile Traders", Country: "EG", IsActive: true},
		{Name: "Gulf Foods", Country: "SA"},
	}

	customers := fromModels(ms, (*models.CustomerModel).ToDomain)

	assert.Len(t, customers, 2)
	assert.Equal(t, "Nile Traders", customers[0].Name)
	assert.False(t, customers[1].IsActive)

	assert.Empty(t, fromModels(nil, (*models.CustomerModel).ToDomain))
}

func TestFromModelsPreservesOrder(t *testing.T) {
	ms := make([]models.CustomerModel, 5)
	for i := range ms {
		ms[i].Name = string(rune('a' + i))
	}

	out := fromModels(ms, (*models.CustomerModel).ToDomain)
	for i, c := range out {
		assert.Equal(t, string(rune('a'+i)), c.Name)
	}
}
