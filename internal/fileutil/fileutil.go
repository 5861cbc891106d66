// Package fileutil holds the file modes used for generated artifacts.
package fileutil

import "os"

// ArtifactMode is the permission mode of written artifacts. Artifacts may
// describe internal APIs, so only the owner can read them.
const ArtifactMode os.FileMode = 0o600

// DirMode is the permission mode of directories created under the output root.
const DirMode os.FileMode = 0o755
