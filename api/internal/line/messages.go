package line

import (
	"fmt"
	"strings"

	"teacher-bot/api/internal/quiz"
	"teacher-bot/api/internal/store"
)

// Reply copy lives here so the router stays readable. The voice follows the
// original teacher-bot persona.

func msgMenu(score, learnedCount int) string {
	return fmt.Sprintf("🤖 คู่มือครูพี่ Bot:\n\n"+
		"1. เริ่มเกม -> เริ่มทายคำศัพท์\n"+
		"2. คะแนน -> ดูคะแนน\n"+
		"3. คำใบ้ -> ขอคำใบ้ (ลด -2 คะแนน)\n"+
		"4. เพิ่ม: [ศัพท์] -> เพิ่มคำใหม่\n"+
		"5. ลบ: [ศัพท์] -> ลบคำ (ถามยืนยันก่อนลบ)\n"+
		"6. คลัง -> ดูศัพท์ล่าสุด\n"+
		"7. ยกเลิก -> ยกเลิกเกม/การลบ\n\n"+
		"📊 คะแนน: %d | 📚 จำได้: %d คำ", score, learnedCount)
}

func msgScore(score, learnedCount int) string {
	return fmt.Sprintf("📊 สถิติความเทพ:\n\n⭐ คะแนนรวม: %d XP\n📚 คำศัพท์ที่แม่นแล้ว: %d คำ", score, learnedCount)
}

func msgQuizQuestion(word string) string {
	return fmt.Sprintf("🎮 เริ่มกันเลย!\n\n❓ คำว่า '%s' แปลว่าอะไร?\n\n💡 ตอบภาษาไทยมาเลย (มี 3 โอกาส ขอคำใบ้ได้)", word)
}

func msgBroadcastQuestion(word string) string {
	return fmt.Sprintf("🔥 ภารกิจมาแล้ว!\n\n❓ คำว่า '%s' แปลว่าอะไร?\n\n💡 ตอบผิดไม่เป็นไร เดี๋ยวมีเฉลยพร้อมตัวอย่างให้ครับ", word)
}

func msgVocabEmpty() string {
	return "📭 คลังศัพท์ว่างเปล่า! พิมพ์ 'เพิ่ม: [คำศัพท์]' เพื่อใส่คำใหม่ก่อนครับ"
}

func msgNoSession() string {
	return "🤔 ยังไม่ได้เริ่มเกมเลยครับ พิมพ์ 'เริ่มเกม' ก่อนนะ"
}

func msgHint(h quiz.HintResult) string {
	if !h.Charged {
		return fmt.Sprintf("💡 ให้คำใบ้ไปแล้วไงครับ: %s", h.Meaning)
	}
	if !h.ScoreKnown {
		// the deduction did not land; don't quote a balance we don't have
		return fmt.Sprintf("💡 คำใบ้: %s\n(-2 คะแนน)\n\nถ้ารู้แล้วพิมพ์ตอบมาเลย!", h.Meaning)
	}
	return fmt.Sprintf("💡 คำใบ้: %s\n(-2 คะแนน | เหลือ: %d)\n\nถ้ารู้แล้วพิมพ์ตอบมาเลย!", h.Meaning, h.NewScore)
}

func msgSubmit(r quiz.SubmitResult) string {
	exTxt := formatExamples(r.Examples)
	switch {
	case r.Ungraded:
		return "😵‍💫 ระบบตรวจคำตอบมีปัญหาชั่วคราว ลองตอบใหม่อีกทีนะครับ"
	case r.Correct:
		b := fmt.Sprintf("🎉 สุดยอด! ถูกต้องครับ (+%d คะแนน)\n\n💬 %s\n📊 คะแนนรวม: %d", r.Awarded, r.Reason, r.NewScore)
		if exTxt != "" {
			b += "\n\n🌟 ตัวอย่างการใช้:\n" + exTxt
		}
		return b + "\n\n👉 พิมพ์ 'เริ่มเกม' เพื่อลุยข้อต่อไป!"
	case r.Revealed:
		b := fmt.Sprintf("❌ ครบ 3 ครั้งแล้วครับ (-%d คะแนน)\n\n📖 เฉลย: %s แปลว่า \"%s\"\n💡 คำแนะนำ: %s", r.Penalty, r.Word, r.Meaning, r.Reason)
		if exTxt != "" {
			b += "\n\n🌟 ดูตัวอย่างประโยคช่วยจำ:\n" + exTxt
		}
		return b + "\n\nไม่ต้องซีเรียสครับ พิมพ์ 'เริ่มเกม' ลองคำใหม่เลย!"
	default:
		return fmt.Sprintf("❌ ยังไม่ใช่นะครับ ลองใหม่ได้อีก %d ครั้ง\n💬 %s", r.AttemptsLeft, r.Reason)
	}
}

func formatExamples(examples []string) string {
	var lines []string
	for _, ex := range examples {
		if t := strings.TrimSpace(ex); t != "" {
			lines = append(lines, "• "+t)
		}
	}
	return strings.Join(lines, "\n")
}

func msgVocabList(entries []store.Vocab) string {
	if len(entries) == 0 {
		return "📭 คลังว่างเปล่าครับ"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📚 ศัพท์ %d คำล่าสุด:\n", len(entries))
	for _, v := range entries {
		b.WriteString("\n- " + v.Word)
	}
	return b.String()
}

func msgVocabAdded(v store.Vocab) string {
	return fmt.Sprintf("✅ จดศัพท์ใหม่แล้ว!\n🔤 %s\n📖 %s\n🗣️ %s", v.Word, v.Meaning, v.Example)
}

func msgVocabExists(v store.Vocab) string {
	return fmt.Sprintf("📌 มีคำนี้อยู่แล้วครับ\n🔤 %s\n📖 %s\n🗣️ %s", v.Word, v.Meaning, v.Example)
}

func msgAddUsage() string {
	return "ใส่คำศัพท์หลัง : ด้วยนะครับ เช่น 'เพิ่ม: Resilience'"
}

func msgDeleteUsage() string {
	return "อย่าลืมใส่คำที่ต้องการลบหลัง : ด้วยนะครับ"
}

func msgDeleteNotFound(target string) string {
	return fmt.Sprintf("🔍 ไม่เจอคำว่า '%s' ในคลังครับ", target)
}

func msgDeleteConfirm(v store.Vocab) string {
	return fmt.Sprintf("⚠️ จะลบคำนี้ใช่ไหมครับ?\n🔤 %s\n📖 %s\n\nพิมพ์ 'ยืนยัน' เพื่อลบ หรือพิมพ์อะไรก็ได้เพื่อยกเลิก", v.Word, v.Meaning)
}

func msgDeleteAmbiguous(matches []store.Vocab) string {
	var b strings.Builder
	b.WriteString("🔍 เจอหลายคำครับ ระบุให้ชัดกว่านี้หน่อย:\n")
	for i, v := range matches {
		if i >= 5 {
			break
		}
		b.WriteString("\n- " + v.Word)
	}
	return b.String()
}

func msgDeleted(word string) string {
	return fmt.Sprintf("🗑️ ลบ '%s' เรียบร้อยครับ", word)
}

func msgDeleteCancelled() string {
	return "👌 ยกเลิกการลบแล้วครับ คำศัพท์ยังอยู่ครบ"
}

func msgCancelled(had bool) string {
	if had {
		return "👌 ยกเลิกเรียบร้อยครับ พิมพ์ 'เริ่มเกม' เมื่อพร้อมลุยต่อ"
	}
	return "ไม่มีอะไรให้ยกเลิกครับ พิมพ์ 'เริ่มเกม' เพื่อเริ่มเล่นเลย"
}

func msgNothingToDo() string {
	return "🤔 อยากเล่นเกมพิมพ์ 'เริ่มเกม' ได้เลยครับ\nหรือพิมพ์ 'คำสั่ง' เพื่อดูเมนู"
}

func msgStoreDown() string {
	return "⚠️ ดึงข้อมูลไม่ได้ครับ เช็ค DB แป๊บ"
}

func msgDeleteFailed() string {
	return "⚠️ ระบบลบมีปัญหา ลองใหม่ครับ"
}

func msgAddFailed() string {
	return "⚠️ บันทึกคำศัพท์ไม่สำเร็จครับ ลองใหม่อีกรอบ"
}

func msgInternalError() string {
	return "😵‍💫 ระบบขัดข้องชั่วคราว ลองใหม่อีกทีนะครับ"
}
