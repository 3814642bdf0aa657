package templates

import "github.com/spec-kit/compensation-agent/internal/domain"

const (
	ar = domain.LanguageArabic
	en = domain.LanguageEnglish
)

var catalog = map[Key]map[domain.Language]string{
	KeyGreeting: {
		ar: "مرحباً! أنا المساعد الذكي لخدمة العملاء.\n\nكيف يمكنني مساعدتك اليوم؟\n\n1️⃣ تقديم شكوى منتج\n2️⃣ متابعة شكوى سابقة\n3️⃣ المساعدة",
		en: "Hello! I'm the customer care assistant.\n\nHow can I help you today?\n\n1️⃣ Submit Product Complaint\n2️⃣ Track Existing Complaint\n3️⃣ Help",
	},
	KeyAskProduct: {
		ar: "📦 من فضلك أخبرني عن المنتج المُشتكى منه:\n\n• اسم المنتج\n• تاريخ الشراء (إن أمكن)\n\nمثال: \"طلاء أبيض 10 لتر، اشتريته الأسبوع الماضي\"",
		en: "📦 Please tell me about the product:\n\n• Product name\n• Purchase date (if known)\n\nExample: \"White paint 10L, bought last week\"",
	},
	KeyAskIssue: {
		ar: "📝 شكراً! الآن من فضلك اشرح المشكلة بالتفصيل:\n\nما المشكلة التي واجهتها مع هذا المنتج؟",
		en: "📝 Thanks! Now please describe the issue in detail:\n\nWhat problem did you experience with this product?",
	},
	KeyAskPhotos: {
		ar: "📷 هل تريد إرسال صور للمشكلة؟\n\nيمكنك إرسال صور الآن، أو اكتب \"تخطي\" للمتابعة بدون صور.",
		en: "📷 Would you like to send photos of the issue?\n\nYou can send photos now, or type \"skip\" to continue without photos.",
	},
	KeyAskName: {
		ar: "من فضلك أخبرني باسمك الكامل:",
		en: "Please tell me your full name:",
	},
	KeyAskPurchaseDate: {
		ar: "📅 ما هو تاريخ الشراء؟ (مثال: 15/08/2026)",
		en: "📅 What was the purchase date? (example: 15/08/2026)",
	},
	KeyAskQuantity: {
		ar: "🔢 ما هي الكمية المتأثرة؟ (مثال: كمية 3)",
		en: "🔢 What quantity is affected? (example: qty 3)",
	},
	KeyConfirmData: {
		ar: "📋 ملخص الشكوى:\n\n🏭 المنتج: {product}\n❌ المشكلة: {issue}\n\nهل هذه المعلومات صحيحة؟\n✅ نعم - لإرسال الشكوى\n❌ لا - لتعديل المعلومات",
		en: "📋 Complaint Summary:\n\n🏭 Product: {product}\n❌ Issue: {issue}\n\nIs this information correct?\n✅ Yes - to submit complaint\n❌ No - to edit information",
	},
	KeyConfirmPrompt: {
		ar: "من فضلك أجب بـ:\n✅ نعم - لتأكيد الشكوى\n❌ لا - لتعديل المعلومات",
		en: "Please answer:\n✅ Yes - to confirm complaint\n❌ No - to edit information",
	},
	KeyTicketCreated: {
		ar: "✅ تم إنشاء الشكوى بنجاح!\n\n🎫 رقم التذكرة: {ticket_number}\n\nسيقوم فريقنا الفني بمراجعة شكواك خلال 48 ساعة.\nسنُبلغك بالنتيجة عبر هذه المحادثة.\n\nشكراً لتواصلك معنا! 🙏",
		en: "✅ Complaint submitted successfully!\n\n🎫 Ticket number: {ticket_number}\n\nOur technical team will review your complaint within 48 hours.\nWe'll notify you of the result in this conversation.\n\nThank you for contacting us! 🙏",
	},
	KeyTicketStatus: {
		ar: "🎫 تذكرة رقم: {ticket_number}\n📅 تاريخ الإنشاء: {created_date}\n🏭 المنتج: {product}\n📊 الحالة: {status}\n{extra_info}",
		en: "🎫 Ticket: {ticket_number}\n📅 Created: {created_date}\n🏭 Product: {product}\n📊 Status: {status}\n{extra_info}",
	},
	KeyNoTickets: {
		ar: "لا توجد شكاوى مسجلة برقم هاتفك.\n\nهل تريد تقديم شكوى جديدة؟ أرسل \"1\"",
		en: "No complaints found for your phone number.\n\nWould you like to submit a new complaint? Send \"1\"",
	},
	KeyUnknown: {
		ar: "عذراً، لم أفهم طلبك. 🤔\n\n1️⃣ تقديم شكوى منتج\n2️⃣ متابعة شكوى سابقة\n3️⃣ المساعدة",
		en: "Sorry, I didn't understand. 🤔\n\n1️⃣ Submit Product Complaint\n2️⃣ Track Existing Complaint\n3️⃣ Help",
	},
	KeyHelp: {
		ar: "📖 المساعدة\n\nيمكنني مساعدتك في:\n\n1️⃣ تقديم شكوى - إذا كانت لديك مشكلة مع منتجاتنا\n2️⃣ متابعة شكوى - لمعرفة حالة شكوى سابقة\n\nالخطوات:\n• أرسل \"1\" لتقديم شكوى\n• سأطلب منك معلومات المنتج والمشكلة\n• سيراجع فريقنا الشكوى خلال 48 ساعة\n• سنبلغك بالنتيجة\n\nهل تريد تقديم شكوى الآن؟",
		en: "📖 Help\n\nI can help you with:\n\n1️⃣ Submit Complaint - If you have an issue with our products\n2️⃣ Track Complaint - To check status of existing complaint\n\nSteps:\n• Send \"1\" to submit a complaint\n• I'll ask for product info and issue details\n• Our team will review within 48 hours\n• We'll notify you of the result\n\nWould you like to submit a complaint now?",
	},
	KeyThanks: {
		ar: "شكراً لتواصلك معنا! 🙏\n\nهل هناك شيء آخر يمكنني مساعدتك به؟",
		en: "Thank you for contacting us! 🙏\n\nIs there anything else I can help you with?",
	},
	KeyCancelled: {
		ar: "تم إلغاء العملية. ✋\n\nإذا احتجت المساعدة، أنا هنا!",
		en: "Operation cancelled. ✋\n\nIf you need help, I'm here!",
	},
	KeyRestart: {
		ar: "لا مشكلة، لنبدأ من جديد.",
		en: "No problem, let's start again.",
	},
	KeyTicketRejected: {
		ar: "تم مراجعة شكواك رقم {ticket_number}.\n\nللأسف لم نتمكن من قبول الشكوى.\nالسبب: {reason}\n\nإذا كان لديك استفسار، تواصل مع خدمة العملاء.",
		en: "Your complaint {ticket_number} has been reviewed.\n\nUnfortunately we could not accept the complaint.\nReason: {reason}\n\nIf you have questions, please contact customer care.",
	},
	KeyApprovedRefund: {
		ar: "خبر سار! 🎉\n\nتمت الموافقة على شكواك رقم {ticket_number}.\n💰 سيتم استرداد المبلغ إلى حسابك خلال 5 أيام عمل.",
		en: "Good news! 🎉\n\nYour complaint {ticket_number} has been approved.\n💰 A refund will be credited to your account within 5 business days.",
	},
	KeyApprovedReplacement: {
		ar: "خبر سار! 🎉\n\nتمت الموافقة على شكواك رقم {ticket_number}.\n📦 سيتم توصيل منتج بديل خلال 3 أيام عمل.",
		en: "Good news! 🎉\n\nYour complaint {ticket_number} has been approved.\n📦 A replacement product will be delivered within 3 business days.",
	},
	KeyReminderReview: {
		ar: "⏰ تذكير: شكواك رقم {ticket_number} قيد المراجعة.\nسيقوم فريقنا بالرد قريباً.",
		en: "⏰ Reminder: Your complaint {ticket_number} is under review.\nOur team will respond soon.",
	},
	KeyReminderCustomer: {
		ar: "⏰ تذكير: نحتاج ردك على شكوى رقم {ticket_number}.",
		en: "⏰ Reminder: We need your response for ticket {ticket_number}.",
	},
}
