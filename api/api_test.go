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

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/config"
	"github.com/vigilhq/vigil/database"

	"github.com/gin-gonic/gin"
)

type TestRequest struct {
	Payload  io.Reader
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
	Header   map[string]string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	err := json.NewDecoder(resp.Body).Decode(&s.Response)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *vigil.Vigil, sqlmock.Sqlmock, error) {
	t.Helper()
	config.MockConfig(&config.Configuration{})

	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, nil, err
	}
	t.Cleanup(func() { _ = db.Close() })

	newVigil, err := vigil.NewVigil(database.Datasource{Conn: db})
	if err != nil {
		return nil, nil, nil, err
	}
	newAPI, err := NewAPI(newVigil)
	if err != nil {
		return nil, nil, nil, err
	}
	router := newAPI.Router()

	return router, newVigil, mock, nil
}

func TestNewAPI(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	newVigil, err := vigil.NewVigil(database.Datasource{Conn: db})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = newVigil.Shutdown(context.Background()) })

	newAPI, err := NewAPI(newVigil)
	assert.NoError(t, err)
	assert.NotNil(t, newAPI)
	assert.NotNil(t, newAPI.Router())
}
