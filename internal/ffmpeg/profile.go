package ffmpeg

import (
	"fmt"
	"slices"
	"strings"
)

// Profile is a fixed set of video encoder arguments
type Profile struct {
	Name        string
	Description string
	VideoArgs   []string
}

// Profile names accepted in configuration
const (
	ProfileAuto     = "auto"
	ProfileHardware = "hardware"
	ProfileSoftware = "software"
)

var profiles = map[string]Profile{
	ProfileHardware: {
		Name:        ProfileHardware,
		Description: "VideoToolbox HEVC (hardware accelerated)",
		VideoArgs:   []string{"-c:v", "hevc_videotoolbox", "-b:v", "30M", "-tag:v", "hvc1"},
	},
	ProfileSoftware: {
		Name:        ProfileSoftware,
		Description: "libx265 (CPU)",
		VideoArgs:   []string{"-c:v", "libx265", "-preset", "fast", "-crf", "22"},
	},
}

// platformProfiles maps GOOS to its profile; anything else is software
var platformProfiles = map[string]string{
	"darwin": ProfileHardware,
}

// ProfileFor resolves the encoder profile for goos. name overrides the
// platform default unless it is empty or "auto".
func ProfileFor(goos, name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == ProfileAuto {
		name = ProfileSoftware
		if p, ok := platformProfiles[goos]; ok {
			name = p
		}
	}

	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown encoder profile %q (want one of %s)", name, strings.Join(ProfileNames(), ", "))
	}
	p.VideoArgs = slices.Clone(p.VideoArgs)
	return p, nil
}

// ProfileNames lists the accepted profile names
func ProfileNames() []string {
	names := []string{ProfileAuto}
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names[1:])
	return names
}
