// SPDX-License-Identifier: Apache-2.0

package domain

import "errors"

var ErrMissingDocumentFields = errors.New("document title and content are required")
var ErrEmptyQuestion = errors.New("question is required")
