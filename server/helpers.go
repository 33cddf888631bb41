package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/sentinela-io/sentinela/server/auth"
	"github.com/sentinela-io/sentinela/server/models"
	"github.com/sentinela-io/sentinela/shared"
	"github.com/sentinela-io/sentinela/utils"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var validate = validator.New()

// DecodedJWT carries the outcome of bearer-token verification through
// the request context. ErrorMsg is empty on success.
type DecodedJWT struct {
	Claims   *auth.AccessTokenClaims
	ErrorMsg string
	Status   int
}

// ErrorPayload is the JSON body for every user-visible failure.
type ErrorPayload struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Handler helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payload interface{}, statusCode int) {
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payload)
}

func writeError(rw http.ResponseWriter, statusCode int, errMsg string, details ...string) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(errMsg, details)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(ErrorPayload{Error: errMsg, Details: details})
}

// writeStoreError maps a store failure to 404 for missing records &
// a generic 500 for everything else.
func writeStoreError(rw http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(rw, http.StatusNotFound, notFoundMsg)
		return
	}

	logg.Error(err)
	writeError(rw, http.StatusInternalServerError, "internal server error")
}

func validationErrDetails(err error) []string {
	return strings.Split(err.Error(), "\n")
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

// ---------------------------------------------------------------------------------//
// Middleware helper functions
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided", Status: http.StatusUnauthorized}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], sentinelaApp.jwtSecret)
	if errors.Is(err, auth.ErrTokenExpired) {
		return DecodedJWT{ErrorMsg: "token has expired", Status: http.StatusUnauthorized}
	}
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided", Status: http.StatusUnauthorized}
	}

	// validate that the user account still exists
	_, err = models.FindUserBy("id", tokenClaims.Subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DecodedJWT{ErrorMsg: "invalid token provided", Status: http.StatusUnauthorized}
	}
	if err != nil {
		return DecodedJWT{ErrorMsg: "error authenticating token", Status: http.StatusInternalServerError}
	}

	return DecodedJWT{Claims: tokenClaims}
}

// currentUserID returns the authenticated caller's user id; only valid
// on routes behind protectedRouteMiddleware.
func currentUserID(r *http.Request) (uint, error) {
	decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	if !ok || decodedJWT.Claims == nil {
		return 0, errors.New("no authenticated user on request")
	}

	userID, err := strconv.ParseUint(decodedJWT.Claims.Subject, 10, 64)
	if err != nil {
		return 0, err
	}

	return uint(userID), nil
}

// ---------------------------------------------------------------------------------//
// Server helper functions
// --------------------------------------------------------------------------------//

func parseServerConfig(config *viper.Viper) *shared.ServerConfig {
	serverConfig := &shared.ServerConfig{}

	fatalOnError(config.Unmarshal(serverConfig))
	fatalOnError(validate.Struct(serverConfig))

	return serverConfig
}

// configDirectory retrieves the directory holding sentinela's db &
// other state. Or logs an error message and then calls os.Exit if
// it's unable to.
func configDirectory(devMode bool) string {
	// Use 'sentinela' folder in home directory for prod
	configFolderName := "sentinela"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func sqliteBackupEnabled(serverConfig *shared.ServerConfig) bool {
	enabled, ok := serverConfig.Google.Storage.EnableSqliteBackupAndSync.(bool)
	return ok && enabled
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
