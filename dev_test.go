package hdrpeak_test

import _ "github.com/bool64/dev" // Include CI/Dev scripts to project.
