package appcontext

import (
	"github.com/SeakMengs/Signfy/internal/auth"
	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/internal/mailer"
	"github.com/SeakMengs/Signfy/internal/repository"
	"github.com/SeakMengs/Signfy/internal/signer"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to the signing sessions and archived files.
	Repository *repository.Repository

	// Mailer sends share links by email.
	Mailer mailer.Client

	// JWTService verifies the bearer tokens issued by the signing backend.
	JWTService auth.JWTInterface

	// S3 is nil when the signed-copy archive is disabled.
	S3 *minio.Client

	// Signer is the unauthenticated signing backend client, bind a token with WithToken per request.
	Signer *signer.Client

	// Drags holds in-progress drags, keyed by session id.
	Drags *signfy.DragRegistry

	// Preview is nil when no font metadata is available.
	Preview *signfy.PreviewRenderer
}
