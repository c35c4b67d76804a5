package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	followupsdomain "sdr_backend/internal/followups/domain"
	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/audio"

	"github.com/google/uuid"
)

type fakeLeads struct {
	lead    leadsdomain.Lead
	updates []leadsdomain.LeadUpdate
}

func (f *fakeLeads) GetLeadByContact(_ context.Context, contact string) (leadsdomain.Lead, error) {
	if contact != f.lead.Contact {
		return leadsdomain.Lead{}, apperr.NotFound("lead not found")
	}
	return f.lead, nil
}

func (f *fakeLeads) UpdateLead(_ context.Context, _ uuid.UUID, u leadsdomain.LeadUpdate) (leadsdomain.Lead, error) {
	f.updates = append(f.updates, u)
	u.ApplyTo(&f.lead)
	return f.lead, nil
}

type fakeStore struct {
	uploaded map[string][]byte
}

func (s *fakeStore) UploadFile(_ context.Context, bucket, folder, fileName, _ string, r io.Reader, _ int64) (string, error) {
	data, _ := io.ReadAll(r)
	key := bucket + "/" + folder + "/" + fileName
	s.uploaded[key] = data
	return key, nil
}

func (s *fakeStore) ValidateContentType(ct string) error {
	if !strings.HasPrefix(ct, "audio/") {
		return errors.New("content type not allowed")
	}
	return nil
}

func (s *fakeStore) ValidateFileSize(n int64) error { return nil }

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) TranscribeWAV(context.Context, io.Reader) (string, error) {
	return f.text, f.err
}

type fakeExtractor struct {
	update leadsdomain.LeadUpdate
	err    error
	known  map[string]any
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, known map[string]any) (leadsdomain.LeadUpdate, error) {
	f.known = known
	return f.update, f.err
}

type fakeSpeech struct{ err error }

func (f fakeSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type fakeFollowUps map[uuid.UUID]followupsdomain.FollowUp

func (f fakeFollowUps) GetFollowUp(_ context.Context, id uuid.UUID) (followupsdomain.FollowUp, error) {
	fu, ok := f[id]
	if !ok {
		return followupsdomain.FollowUp{}, apperr.NotFound("follow-up not found")
	}
	return fu, nil
}

func newLead() *fakeLeads {
	location := "Itapema"
	return &fakeLeads{lead: leadsdomain.Lead{ID: uuid.New(), Contact: "+5547999887766", Status: leadsdomain.StatusQualifying, Location: &location}}
}

func upload(body string) Upload {
	return Upload{FileName: "voz.wav", ContentType: "audio/wav", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestProcessAudioAppliesExtractedFields(t *testing.T) {
	leads := newLead()
	store := &fakeStore{uploaded: map[string][]byte{}}
	extractor := &fakeExtractor{update: leadsdomain.LeadUpdate{Bedrooms: leadsdomain.SetTo(3)}}
	svc := New(Deps{
		Leads: leads, Store: store, Bucket: "lead-media",
		Transcriber: fakeTranscriber{text: " quero três quartos "}, Extractor: extractor,
	}, nil)

	res, err := svc.ProcessAudio(context.Background(), "+5547999887766", upload("RIFF...."))
	if err != nil {
		t.Fatalf("ProcessAudio: %v", err)
	}
	if res.StoragePath != "lead-media/+5547999887766/voz.wav" {
		t.Fatalf("storage path = %q", res.StoragePath)
	}
	if !bytes.Equal(store.uploaded[res.StoragePath], []byte("RIFF....")) {
		t.Fatalf("uploaded bytes differ")
	}
	if res.Transcript != "quero três quartos" {
		t.Fatalf("transcript = %q", res.Transcript)
	}
	if res.UpdatedFields["bedrooms"] != 3 {
		t.Fatalf("updated fields = %v", res.UpdatedFields)
	}
	if res.Lead.Location == nil || *res.Lead.Location != "Itapema" {
		t.Fatalf("partial update must keep location")
	}
	if extractor.known["location"] != "Itapema" {
		t.Fatalf("known fields not passed to extractor: %v", extractor.known)
	}
}

func TestProcessAudioExtractionFailureKeepsLead(t *testing.T) {
	leads := newLead()
	svc := New(Deps{
		Leads: leads, Transcriber: fakeTranscriber{text: "oi"},
		Extractor: &fakeExtractor{err: errors.New("quota exceeded")},
	}, nil)

	res, err := svc.ProcessAudio(context.Background(), "+5547999887766", upload("RIFF"))
	if err != nil {
		t.Fatalf("ProcessAudio: %v", err)
	}
	if len(leads.updates) != 0 || len(res.UpdatedFields) != 0 {
		t.Fatalf("no fields may be applied when extraction fails")
	}
	if res.Transcript != "oi" {
		t.Fatalf("transcript = %q", res.Transcript)
	}
}

func TestProcessAudioErrors(t *testing.T) {
	cases := []struct {
		name    string
		deps    Deps
		contact string
		up      Upload
		want    apperr.Kind
	}{
		{"unknown lead", Deps{Transcriber: fakeTranscriber{}}, "+5511000000000", upload("x"), apperr.KindNotFound},
		{"no transcriber", Deps{}, "+5547999887766", upload("x"), apperr.KindUnavailable},
		{"unsupported audio", Deps{Transcriber: fakeTranscriber{err: audio.ErrUnsupportedAudio}}, "+5547999887766", upload("x"), apperr.KindValidation},
		{"transcriber down", Deps{Transcriber: fakeTranscriber{err: errors.New("model crashed")}}, "+5547999887766", upload("x"), apperr.KindUnavailable},
		{"empty file", Deps{Transcriber: fakeTranscriber{}}, "+5547999887766", upload(""), apperr.KindValidation},
		{"wrong content type", Deps{Transcriber: fakeTranscriber{}, Store: &fakeStore{uploaded: map[string][]byte{}}}, "+5547999887766",
			Upload{FileName: "x.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")}, apperr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.deps.Leads = newLead()
			_, err := New(tc.deps, nil).ProcessAudio(context.Background(), tc.contact, tc.up)
			if got := apperr.GetKind(err); got != tc.want {
				t.Fatalf("kind = %v, want %v (err %v)", got, tc.want, err)
			}
		})
	}
}

func TestSynthesizeFollowUp(t *testing.T) {
	id := uuid.New()
	svc := New(Deps{
		FollowUps: fakeFollowUps{id: {ID: id, MessageTemplate: "Olá! Ainda procura um imóvel?"}},
		Speech:    fakeSpeech{},
	}, nil)

	out, err := svc.SynthesizeFollowUp(context.Background(), id)
	if err != nil {
		t.Fatalf("SynthesizeFollowUp: %v", err)
	}
	if string(out) != "mp3:Olá! Ainda procura um imóvel?" {
		t.Fatalf("audio = %q", out)
	}
	if _, err := svc.SynthesizeFollowUp(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSynthesizeTextFailures(t *testing.T) {
	if _, err := New(Deps{}, nil).SynthesizeText(context.Background(), "oi"); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("unconfigured speech must be unavailable, got %v", err)
	}
	svc := New(Deps{Speech: fakeSpeech{err: errors.New("401")}}, nil)
	if _, err := svc.SynthesizeText(context.Background(), "oi"); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("speech failure must be unavailable, got %v", err)
	}
	if _, err := svc.SynthesizeText(context.Background(), "  "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("blank text must be a validation error, got %v", err)
	}
}
