package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/activecm/ctiview/config"
	"github.com/activecm/ctiview/resources"
	"github.com/activecm/ctiview/storage"
	"github.com/blang/semver"
	"github.com/google/go-github/github"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//Strings used for informing the user of a new version.
var informFmtStr = "\nTheres a new %s version of ctiview %s available at:\nhttps://github.com/activecm/ctiview/releases\n"
var versions = []string{"Major", "Minor", "Patch"}

// updateCheckKey stores the result of the last remote version check
const updateCheckKey = "update_check"

// releaseTimeout bounds the request to GitHub
const releaseTimeout = 10 * time.Second

type lastCheck struct {
	Timestamp     time.Time `json:"timestamp"`
	NewestVersion string    `json:"newest_version"`
}

// updateCheck Performs a check for the new version of ctiview against the git repository and
//returns a string indicating the new version if available
func updateCheck(configFile string) string {
	res := resources.InitResources(configFile)
	defer res.Close()

	delta := res.Config.S.UserConfig.UpdateCheckFrequency
	if delta <= 0 {
		return ""
	}

	//Check storage for the last known version
	timestamp, newVersion := loadLastCheck(res.Store)

	days := time.Since(timestamp).Hours() / 24

	if days > float64(delta) {
		var err error
		newVersion, err = getRemoteVersion()
		if err != nil {
			return ""
		}

		//Log checked version.
		res.Log.WithFields(log.Fields{
			"Message":         "Checking versions...",
			"LastUpdateCheck": time.Now(),
			"NewestVersion":   fmt.Sprint(newVersion),
		}).Info("Checking for new version")

		recordLastCheck(res.Store, res.Log, time.Now(), newVersion)
	}

	configVersion, err := semver.ParseTolerant(config.Version)
	if err != nil {
		return ""
	}

	if newVersion.GT(configVersion) {
		return informUser(configVersion, newVersion)
	}

	return ""
}

// loadLastCheck returns the zero time when no check was recorded yet
func loadLastCheck(kv storage.KeyValue) (time.Time, semver.Version) {
	raw, ok, err := kv.Get(updateCheckKey)
	if err != nil || !ok {
		return time.Time{}, semver.Version{}
	}
	var check lastCheck
	if err := json.Unmarshal(raw, &check); err != nil {
		return time.Time{}, semver.Version{}
	}
	version, err := semver.ParseTolerant(check.NewestVersion)
	if err != nil {
		return time.Time{}, semver.Version{}
	}
	return check.Timestamp, version
}

func saveLastCheck(kv storage.KeyValue, at time.Time, version semver.Version) error {
	raw, err := json.Marshal(lastCheck{Timestamp: at, NewestVersion: version.String()})
	if err != nil {
		return err
	}
	return kv.Set(updateCheckKey, raw)
}

// recordLastCheck saves the check, a storage failure only costs an extra
// remote check next run so it is logged and otherwise ignored
func recordLastCheck(kv storage.KeyValue, logger *log.Logger, at time.Time, version semver.Version) {
	if err := saveLastCheck(kv, at, version); err != nil {
		logger.WithFields(log.Fields{
			"error": err.Error(),
		}).Warn("Could not save update check")
	}
}

// Returns the first index where v1 is greater than v2
func versionDiffIndex(v1 semver.Version, v2 semver.Version) int {

	if v1.Major > v2.Major {
		return 0
	}
	if v1.Minor > v2.Minor {
		return 1
	}

	return 2
}

func getRemoteVersion() (semver.Version, error) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	client := github.NewClient(nil)
	refs, _, err := client.Git.GetRefs(ctx, "activecm", "ctiview", "refs/tags/v")
	if err != nil {
		return semver.Version{}, err
	}
	if len(refs) == 0 {
		return semver.Version{}, fmt.Errorf("no release tags found")
	}

	s := strings.TrimPrefix(*refs[len(refs)-1].Ref, "refs/tags/")
	return semver.ParseTolerant(s)
}

// Assembles a notice for the user informing them of an upgrade.
// The return value is printed regardless so, "" is returned on errror.
func informUser(local semver.Version, remote semver.Version) string {
	return fmt.Sprintf(informFmtStr,
		versions[versionDiffIndex(remote, local)],
		fmt.Sprint(remote))
}
