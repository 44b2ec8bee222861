package utils

import (
	"testing"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTempDB(t *testing.T) {
	db, dbName := CreateTempDB(t)
	assert.Contains(t, dbName, TestDBPrefix)

	for _, m := range []interface{}{
		&model.User{}, &model.Friend{}, &model.Conversation{}, &model.Message{},
		&model.Post{}, &model.Smile{}, &model.ContactMessage{}, &model.TopUp{},
	} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestTempDBsAreIsolated(t *testing.T) {
	db1, _ := CreateTempDB(t)
	db2, _ := CreateTempDB(t)

	require.Nil(t, db1.Create(&model.ContactMessage{Id: "c1", Body: "hi"}).Error)

	var count int64
	db2.Model(&model.ContactMessage{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db1.Model(&model.ContactMessage{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
