package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/models"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTranscriptService is a mock implementation of transcripts.TranscriptService
type MockTranscriptService struct {
	mock.Mock
	received []byte
}

func (m *MockTranscriptService) Available() error {
	return m.Called().Error(0)
}

func (m *MockTranscriptService) Receive(filename string, r io.Reader) (transcripts.Upload, error) {
	m.received, _ = io.ReadAll(r)
	args := m.Called(filename)
	return args.Get(0).(transcripts.Upload), args.Error(1)
}

func (m *MockTranscriptService) Ingest(ctx context.Context, upload transcripts.Upload) (*models.Transcript, error) {
	args := m.Called(upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}

func (m *MockTranscriptService) List(ctx context.Context) ([]models.Transcript, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transcript), args.Error(1)
}

func (m *MockTranscriptService) Get(ctx context.Context, id uint) (*models.Transcript, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}

func (m *MockTranscriptService) Delete(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockTranscriptService) AudioPath(filename string) (string, error) {
	args := m.Called(filename)
	return args.String(0), args.Error(1)
}

func setupRouter(svc transcripts.TranscriptService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/api/transcripts"), &types.Dependencies{TranscriptService: svc})
	return router
}

func decodeError(t *testing.T, body []byte) string {
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error
}

// multipartBody builds an upload form. A nil content sends no file part.
func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("title", "nothing here"))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestList(t *testing.T) {
	svc := new(MockTranscriptService)
	svc.On("List").Return([]models.Transcript{
		{ID: 2, Title: "zwei", AudioFilename: "2_zwei.mp3"},
		{ID: 1, Title: "eins", AudioFilename: "1_eins.wav"},
	}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transcripts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id": 2, "title": "zwei", "audio_url": "/audio/2_zwei.mp3"},
		{"id": 1, "title": "eins", "audio_url": "/audio/1_eins.wav"}
	]`, w.Body.String())
}

func TestList_Empty(t *testing.T) {
	svc := new(MockTranscriptService)
	svc.On("List").Return([]models.Transcript{}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transcripts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUpload(t *testing.T) {
	upload := transcripts.Upload{TempPath: "/tmp/abc_hallo.wav", OriginalFilename: "hallo.wav"}

	tests := []struct {
		name           string
		field          string
		filename       string
		content        []byte
		setup          func(m *MockTranscriptService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:     "engine not loaded",
			field:    "audio",
			filename: "hallo.wav",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(transcripts.ErrEngineUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  MsgUnavailable,
		},
		{
			name:    "no file part",
			field:   "audio",
			content: nil,
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  MsgNoAudio,
		},
		{
			name:     "wrong field name",
			field:    "file",
			filename: "hallo.wav",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  MsgNoAudio,
		},
		{
			name:     "empty filename",
			field:    "audio",
			filename: "",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  MsgNoFileSelected,
		},
		{
			name:     "undecodable audio",
			field:    "audio",
			filename: "notes.mp3",
			content:  []byte("just some text"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
				m.On("Receive", "notes.mp3").Return(upload, nil)
				m.On("Ingest", upload).Return(nil, &transcripts.StageError{
					Stage: transcripts.Normalized,
					Err:   fmt.Errorf("sniffed text/plain: %w", transcripts.ErrUnsupportedFormat),
				})
			},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedError:  MsgUnsupported,
		},
		{
			name:     "engine lost during ingest",
			field:    "audio",
			filename: "hallo.wav",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
				m.On("Receive", "hallo.wav").Return(upload, nil)
				m.On("Ingest", upload).Return(nil, fmt.Errorf("probe: %w", transcripts.ErrEngineUnavailable))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  MsgUnavailable,
		},
		{
			name:     "queue full",
			field:    "audio",
			filename: "hallo.wav",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
				m.On("Receive", "hallo.wav").Return(upload, nil)
				m.On("Ingest", upload).Return(nil, transcripts.ErrBusy)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  MsgBusy,
		},
		{
			name:     "transcription failure",
			field:    "audio",
			filename: "hallo.wav",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
				m.On("Receive", "hallo.wav").Return(upload, nil)
				m.On("Ingest", upload).Return(nil, errors.New("whisper exited with status 1"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  MsgInternal,
		},
		{
			name:     "temp directory failure",
			field:    "audio",
			filename: "hallo.wav",
			content:  []byte("RIFF"),
			setup: func(m *MockTranscriptService) {
				m.On("Available").Return(nil)
				m.On("Receive", "hallo.wav").Return(transcripts.Upload{}, errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTranscriptService)
			tt.setup(svc)

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/transcripts", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedError, decodeError(t, w.Body.Bytes()))
			svc.AssertExpectations(t)
		})
	}
}

func TestUpload_Success(t *testing.T) {
	upload := transcripts.Upload{TempPath: "/tmp/abc_Mein_Urlaub.m4a", OriginalFilename: "Mein Urlaub.m4a"}
	svc := new(MockTranscriptService)
	svc.On("Available").Return(nil)
	svc.On("Receive", "Mein Urlaub.m4a").Return(upload, nil)
	svc.On("Ingest", upload).Return(&models.Transcript{
		ID:            5,
		Title:         "Mein_Urlaub",
		AudioFilename: "5_Mein_Urlaub.m4a",
	}, nil)

	body, contentType := multipartBody(t, "audio", "Mein Urlaub.m4a", []byte("m4a bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcripts", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id": 5, "title": "Mein_Urlaub", "audio_url": "/audio/5_Mein_Urlaub.m4a"}`, w.Body.String())
	assert.Equal(t, []byte("m4a bytes"), svc.received)
	svc.AssertExpectations(t)
}

func TestUpload_NotMultipart(t *testing.T) {
	svc := new(MockTranscriptService)
	svc.On("Available").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transcripts", bytes.NewBufferString(`{"audio": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgNoAudio, decodeError(t, w.Body.Bytes()))
}

func TestGet(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setup          func(m *MockTranscriptService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "found",
			path: "/api/transcripts/3",
			setup: func(m *MockTranscriptService) {
				m.On("Get", uint(3)).Return(&models.Transcript{
					ID:             3,
					Title:          "hallo",
					AudioFilename:  "3_hallo.wav",
					TranscriptJSON: `{"text":"Hallo Welt","segments":[]}`,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"id": 3, "title": "hallo", "audio_url": "/audio/3_hallo.wav",
				"transcript_data": {"text": "Hallo Welt", "segments": []}}`,
		},
		{
			name: "missing",
			path: "/api/transcripts/9",
			setup: func(m *MockTranscriptService) {
				m.On("Get", uint(9)).Return(nil, transcripts.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error": "Transcript not found"}`,
		},
		{
			name:           "non numeric id",
			path:           "/api/transcripts/abc",
			setup:          func(m *MockTranscriptService) {},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error": "Transcript not found"}`,
		},
		{
			name: "database failure",
			path: "/api/transcripts/4",
			setup: func(m *MockTranscriptService) {
				m.On("Get", uint(4)).Return(nil, errors.New("database is locked"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error": "Failed to load transcript"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTranscriptService)
			tt.setup(svc)

			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setup          func(m *MockTranscriptService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "deleted",
			path:           "/api/transcripts/1",
			setup:          func(m *MockTranscriptService) { m.On("Delete", uint(1)).Return(nil) },
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message": "Transcript deleted successfully"}`,
		},
		{
			name:           "missing",
			path:           "/api/transcripts/2",
			setup:          func(m *MockTranscriptService) { m.On("Delete", uint(2)).Return(transcripts.ErrNotFound) },
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error": "Transcript not found"}`,
		},
		{
			name: "file removal failure",
			path: "/api/transcripts/3",
			setup: func(m *MockTranscriptService) {
				m.On("Delete", uint(3)).Return(errors.New("failed to remove audio file: permission denied"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error": "Failed to delete transcript due to an internal error"}`,
		},
		{
			name:           "zero id",
			path:           "/api/transcripts/0",
			setup:          func(m *MockTranscriptService) {},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error": "Transcript not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTranscriptService)
			tt.setup(svc)

			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestSubtitles(t *testing.T) {
	stored := &models.Transcript{
		ID:            5,
		Title:         "morgen",
		AudioFilename: "5_morgen.mp3",
		TranscriptJSON: `{"text": "Guten Morgen.", "segments": [
			{"id": 0, "start": 0.5, "end": 2, "text": " Guten Morgen."}
		]}`,
	}

	tests := []struct {
		name                string
		path                string
		setup               func(m *MockTranscriptService)
		expectedStatus      int
		expectedBody        string
		expectedType        string
		expectedDisposition string
	}{
		{
			name:                "default vtt",
			path:                "/api/transcripts/5/subtitles",
			setup:               func(m *MockTranscriptService) { m.On("Get", uint(5)).Return(stored, nil) },
			expectedStatus:      http.StatusOK,
			expectedBody:        "WEBVTT\n\n00:00:00.500 --> 00:00:02.000\nGuten Morgen.\n",
			expectedType:        "text/vtt; charset=utf-8",
			expectedDisposition: "inline; filename=5_morgen.vtt",
		},
		{
			name:                "srt",
			path:                "/api/transcripts/5/subtitles?format=srt",
			setup:               func(m *MockTranscriptService) { m.On("Get", uint(5)).Return(stored, nil) },
			expectedStatus:      http.StatusOK,
			expectedBody:        "1\n00:00:00,500 --> 00:00:02,000\nGuten Morgen.\n",
			expectedType:        "application/x-subrip; charset=utf-8",
			expectedDisposition: "inline; filename=5_morgen.srt",
		},
		{
			name:                "text",
			path:                "/api/transcripts/5/subtitles?format=text",
			setup:               func(m *MockTranscriptService) { m.On("Get", uint(5)).Return(stored, nil) },
			expectedStatus:      http.StatusOK,
			expectedBody:        "Guten Morgen.\n",
			expectedType:        "text/plain; charset=utf-8",
			expectedDisposition: "inline; filename=5_morgen.txt",
		},
		{
			name:           "unsupported format",
			path:           "/api/transcripts/5/subtitles?format=ass",
			setup:          func(m *MockTranscriptService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Unsupported subtitle format. Use vtt, srt or text."}`,
		},
		{
			name:           "missing",
			path:           "/api/transcripts/6/subtitles",
			setup:          func(m *MockTranscriptService) { m.On("Get", uint(6)).Return(nil, transcripts.ErrNotFound) },
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Transcript not found"}`,
		},
		{
			name: "corrupt transcript data",
			path: "/api/transcripts/7/subtitles",
			setup: func(m *MockTranscriptService) {
				m.On("Get", uint(7)).Return(&models.Transcript{ID: 7, AudioFilename: "7_x.wav", TranscriptJSON: "{"}, nil)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to load transcript"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTranscriptService)
			tt.setup(svc)

			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
				assert.Equal(t, tt.expectedDisposition, w.Header().Get("Content-Disposition"))
			}
			svc.AssertExpectations(t)
		})
	}
}
