// Package errors 는 여러 계층이 공유하는 오류 값이다.
package errors

import "errors"

// ErrOptimisticLock 다른 요청이 먼저 수정한 레코드
var ErrOptimisticLock = errors.New("다른 작업이 먼저 수정했습니다. 새로고침 후 다시 시도하세요")
