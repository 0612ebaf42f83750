package database

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestModelsParse(t *testing.T) {
	cache := &sync.Map{}
	for _, m := range Models() {
		m := m
		t.Run(fmt.Sprintf("%T", m), func(t *testing.T) {
			_, err := schema.Parse(m, cache, schema.NamingStrategy{})
			require.NoError(t, err)
		})
	}
}
