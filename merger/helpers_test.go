package merger

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"arxmerge/config"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	return cfg
}

const (
	typesFragment = `<?xml version="1.0" encoding="UTF-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0">
	<AR-PACKAGES>
		<AR-PACKAGE>
			<SHORT-NAME>Demo</SHORT-NAME>
			<ELEMENTS>
				<SW-BASE-TYPE>
					<SHORT-NAME>uint8</SHORT-NAME>
					<CATEGORY>FIXED_LENGTH</CATEGORY>
				</SW-BASE-TYPE>
			</ELEMENTS>
		</AR-PACKAGE>
	</AR-PACKAGES>
</AUTOSAR>`

	usersFragment = `<?xml version="1.0" encoding="UTF-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0">
	<AR-PACKAGES>
		<AR-PACKAGE>
			<SHORT-NAME>Demo</SHORT-NAME>
			<ELEMENTS>
				<IMPLEMENTATION-DATA-TYPE>
					<SHORT-NAME>Speed</SHORT-NAME>
					<SW-DATA-DEF-PROPS>
						<BASE-TYPE-REF DEST="SW-BASE-TYPE">/Demo/uint8</BASE-TYPE-REF>
					</SW-DATA-DEF-PROPS>
				</IMPLEMENTATION-DATA-TYPE>
			</ELEMENTS>
		</AR-PACKAGE>
	</AR-PACKAGES>
</AUTOSAR>`

	danglingFragment = `<?xml version="1.0" encoding="UTF-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0">
	<AR-PACKAGES>
		<AR-PACKAGE>
			<SHORT-NAME>Demo</SHORT-NAME>
			<ELEMENTS>
				<IMPLEMENTATION-DATA-TYPE>
					<SHORT-NAME>Torque</SHORT-NAME>
					<SW-DATA-DEF-PROPS>
						<BASE-TYPE-REF DEST="SW-BASE-TYPE">/Demo/sint16</BASE-TYPE-REF>
					</SW-DATA-DEF-PROPS>
				</IMPLEMENTATION-DATA-TYPE>
			</ELEMENTS>
		</AR-PACKAGE>
	</AR-PACKAGES>
</AUTOSAR>`
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// writeZip creates archive with pairs of (name, content).
func writeZip(t *testing.T, path string, pairs ...string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	zf, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zf.Close()

	w := zip.NewWriter(zf)
	for i := 0; i < len(pairs); i += 2 {
		fw, err := w.Create(pairs[i])
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", pairs[i], err)
		}
		if _, err := io.WriteString(fw, pairs[i+1]); err != nil {
			t.Fatalf("Failed to write %s: %v", pairs[i], err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return path
}
