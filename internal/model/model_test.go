package model

import (
	"testing"

	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/stretchr/testify/require"
)

func TestSigningSessionRoundTrip(t *testing.T) {
	row := SigningSession{
		DocumentID: "doc-1",
		PageCount:  3,
		PageWidth:  595,
		PageHeight: 842,
		Status:     signfy.StatusIdle,
	}

	session := row.ToSession()
	require.Nil(t, session.Draft)
	require.Nil(t, session.Placement)

	_, err := session.Place("Jane Doe", signfy.FontCaveat, 30)
	require.NoError(t, err)
	require.NoError(t, session.RecordPlacement(signfy.Placement{X: 120, Y: 400, Page: 2}))

	row.FromSession(session)
	require.Equal(t, signfy.StatusDrafting, row.Status)
	require.Equal(t, "JD", row.Initials)
	require.True(t, row.HasPlacement)

	restored := row.ToSession()
	require.Equal(t, session.Draft, restored.Draft)
	require.Equal(t, session.Placement, restored.Placement)
	require.Equal(t, signfy.Size{Width: 595, Height: 842}, restored.PageSize)
	require.EqualValues(t, 3, restored.PageCount)
}

func TestSigningSessionClearsDraft(t *testing.T) {
	row := SigningSession{
		DocumentID:   "doc-1",
		Status:       signfy.StatusApplyPending,
		Name:         "Jane Doe",
		Font:         signfy.FontPacifico,
		FontSize:     24,
		HasPlacement: true,
		Page:         1,
	}

	session := row.ToSession()
	session.Draft = nil
	session.Placement = nil
	session.Signed = &signfy.SignedFile{URL: "http://files/signed.pdf", FileName: "signed.pdf"}
	session.Status = signfy.StatusSigned

	row.FromSession(session)
	require.Empty(t, row.Name)
	require.False(t, row.HasPlacement)
	require.Equal(t, "http://files/signed.pdf", row.SignedURL)
}
