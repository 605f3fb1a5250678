// Package nutrition implements the homomorphic analysis formula: a pure
// function from one encrypted user record to five encrypted targets and a
// score, expressed only through the adapter's operation set. Nothing in
// this package decrypts anything.
package nutrition

import (
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/fhe"
)

// Record is one provider submission: eight encrypted integers. A record is
// all-or-nothing; DailyCalories doubles as the existence sentinel.
type Record struct {
	DailyCalories fhe.Int
	ProteinGrams  fhe.Int
	CarbGrams     fhe.Int
	FatGrams      fhe.Int
	WaterML       fhe.Int
	ActivityLevel fhe.Int // 1–5
	HealthGoal    fhe.Int // 1=lose, 2=gain, 3=maintain
	AllergyMask   fhe.Int
}

// Present reports whether the record exists.
func (r Record) Present() bool { return r.DailyCalories.IsInitialized() }

// Result is the six encrypted outputs of Analyze, in the fixed wire order
// CalorieTarget, ProteinTarget, CarbTarget, FatTarget, WaterTarget, Score.
type Result struct {
	CalorieTarget fhe.Int
	ProteinTarget fhe.Int
	CarbTarget    fhe.Int
	FatTarget     fhe.Int
	WaterTarget   fhe.Int
	Score         fhe.Int
}

// Handles returns the six ciphertext handles in the fixed wire order.
func (r Result) Handles() []fhe.Handle {
	return []fhe.Handle{
		r.CalorieTarget.Handle(),
		r.ProteinTarget.Handle(),
		r.CarbTarget.Handle(),
		r.FatTarget.Handle(),
		r.WaterTarget.Handle(),
		r.Score.Handle(),
	}
}

// Analyze evaluates the analysis formula over an encrypted record. It is
// deterministic: the same record ciphertexts always produce the same six
// output handles. Both arms of every select are materialized, so the chosen
// branch is not observable.
//
//	activityCalories = activityLevel * 50
//	tdee             = 1500 + activityCalories
//	adjustment       = goal==1 ? -500 : goal==2 ? +500 : 0
//	calorieTarget    = tdee + adjustment
//	proteinTarget    = (calorieTarget*30/100)/4
//	fatTarget        = (calorieTarget*25/100)/9
//	carbTarget       = (calorieTarget - proteinTarget*4 - fatTarget*9)/4
//	waterTarget      = 2500
//	score            = 100 - |dailyCalories-calorieTarget|*100/max(calorieTarget,1)
func Analyze(s fhe.Scheme, rec Record) Result {
	lift := s.Lift
	liftSigned := func(v int64) fhe.Int { return s.Lift(uint64(v)) }

	activityCalories := s.Mul(rec.ActivityLevel, lift(50))
	tdee := s.Add(lift(1500), activityCalories)

	adjustment := s.Select(
		s.Eq(rec.HealthGoal, lift(1)),
		liftSigned(-500),
		s.Select(s.Eq(rec.HealthGoal, lift(2)), lift(500), lift(0)),
	)
	calorieTarget := s.Add(tdee, adjustment)

	proteinTarget := s.Div(s.Div(s.Mul(calorieTarget, lift(30)), lift(100)), lift(4))
	fatTarget := s.Div(s.Div(s.Mul(calorieTarget, lift(25)), lift(100)), lift(9))
	carbTarget := s.Div(
		s.Sub(s.Sub(calorieTarget, s.Mul(proteinTarget, lift(4))), s.Mul(fatTarget, lift(9))),
		lift(4),
	)

	waterTarget := lift(2500)

	diff := s.Sub(rec.DailyCalories, calorieTarget)
	absDiff := s.Select(s.Ge(diff, lift(0)), diff, s.Sub(lift(0), diff))
	denom := s.Select(s.Ge(calorieTarget, lift(1)), calorieTarget, lift(1))
	score := s.Sub(lift(100), s.Div(s.Mul(absDiff, lift(100)), denom))

	return Result{
		CalorieTarget: calorieTarget,
		ProteinTarget: proteinTarget,
		CarbTarget:    carbTarget,
		FatTarget:     fatTarget,
		WaterTarget:   waterTarget,
		Score:         score,
	}
}

// PlainRecord is the cleartext shape of a record, used by tests and by
// provider-side encryption tooling.
type PlainRecord struct {
	DailyCalories uint64
	ProteinGrams  uint64
	CarbGrams     uint64
	FatGrams      uint64
	WaterML       uint64
	ActivityLevel uint64
	HealthGoal    uint64
	AllergyMask   uint64
}

// PlainResult is the cleartext shape of a Result, fields in the fixed wire
// order.
type PlainResult struct {
	CalorieTarget int64
	ProteinTarget int64
	CarbTarget    int64
	FatTarget     int64
	WaterTarget   int64
	Score         int64
}

// Values returns the result as six signed words in the fixed wire order.
func (r PlainResult) Values() [6]int64 {
	return [6]int64{r.CalorieTarget, r.ProteinTarget, r.CarbTarget, r.FatTarget, r.WaterTarget, r.Score}
}

// Reference computes the formula directly on cleartext. It is the test
// oracle for Analyze: encrypt, Analyze, decrypt must equal Reference.
func Reference(p PlainRecord) PlainResult {
	tdee := 1500 + int64(p.ActivityLevel)*50

	var adjustment int64
	switch p.HealthGoal {
	case 1:
		adjustment = -500
	case 2:
		adjustment = 500
	}
	calorieTarget := tdee + adjustment

	proteinTarget := (calorieTarget * 30 / 100) / 4
	fatTarget := (calorieTarget * 25 / 100) / 9
	carbTarget := (calorieTarget - proteinTarget*4 - fatTarget*9) / 4

	diff := int64(p.DailyCalories) - calorieTarget
	if diff < 0 {
		diff = -diff
	}
	denom := calorieTarget
	if denom < 1 {
		denom = 1
	}
	score := 100 - diff*100/denom

	return PlainResult{
		CalorieTarget: calorieTarget,
		ProteinTarget: proteinTarget,
		CarbTarget:    carbTarget,
		FatTarget:     fatTarget,
		WaterTarget:   2500,
		Score:         score,
	}
}

// EncryptRecord encrypts a cleartext record field by field.
func EncryptRecord(s fhe.Scheme, p PlainRecord) (Record, error) {
	var rec Record
	var err error
	if rec.DailyCalories, err = s.Encrypt(p.DailyCalories); err != nil {
		return Record{}, err
	}
	if rec.ProteinGrams, err = s.Encrypt(p.ProteinGrams); err != nil {
		return Record{}, err
	}
	if rec.CarbGrams, err = s.Encrypt(p.CarbGrams); err != nil {
		return Record{}, err
	}
	if rec.FatGrams, err = s.Encrypt(p.FatGrams); err != nil {
		return Record{}, err
	}
	if rec.WaterML, err = s.Encrypt(p.WaterML); err != nil {
		return Record{}, err
	}
	if rec.ActivityLevel, err = s.Encrypt(p.ActivityLevel); err != nil {
		return Record{}, err
	}
	if rec.HealthGoal, err = s.Encrypt(p.HealthGoal); err != nil {
		return Record{}, err
	}
	if rec.AllergyMask, err = s.Encrypt(p.AllergyMask); err != nil {
		return Record{}, err
	}
	return rec, nil
}
