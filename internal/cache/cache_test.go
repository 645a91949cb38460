/*
Copyright 2024 Vigil Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func newMiniredisCache(t *testing.T) Cache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	t.Cleanup(mr.Close)

	c, err := NewCache(mr.Addr())
	assert.NoError(t, err)
	return c
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	mockCache := newMiniredisCache(t)

	key := "testKey"
	setValue := map[string]string{"hello": "world"}
	err := mockCache.Set(ctx, key, setValue, 10*time.Minute)
	assert.NoError(t, err)

	var getValue map[string]string
	err = mockCache.Get(ctx, key, &getValue)
	assert.NoError(t, err)
	assert.Equal(t, setValue, getValue)
}

func TestGetNonExistentKey(t *testing.T) {
	ctx := context.Background()
	mockCache := newMiniredisCache(t)

	var getValue map[string]string
	err := mockCache.Get(ctx, "nonExistentKey", &getValue)
	assert.NoError(t, err) // a cache miss is not an error
	assert.Empty(t, getValue)
}

func TestHas(t *testing.T) {
	ctx := context.Background()
	mockCache := newMiniredisCache(t)

	assert.False(t, mockCache.Has(ctx, "seenKey"))

	err := mockCache.Set(ctx, "seenKey", true, 10*time.Minute)
	assert.NoError(t, err)
	assert.True(t, mockCache.Has(ctx, "seenKey"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	mockCache := newMiniredisCache(t)

	key := "toDelete"
	err := mockCache.Set(ctx, key, "value", 10*time.Minute)
	assert.NoError(t, err)

	err = mockCache.Delete(ctx, key)
	assert.NoError(t, err)
	assert.False(t, mockCache.Has(ctx, key))
}
